// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/examdash/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Dashboard DashboardConfig `toml:"dashboard"`
}

// DashboardConfig maps dashboard-related settings.
type DashboardConfig struct {
	Student     *string `toml:"student"`
	WeakTop     *int    `toml:"weak-top"`
	TrendWindow *int    `toml:"trend-window"`
	DB          *string `toml:"db"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// CatalogFile is the TOML layout accepted by catalog import.
//
//	[[lesson]]
//	name = "Math"
//	topics = ["Limits", "Derivatives"]
type CatalogFile struct {
	Lessons []CatalogLesson `toml:"lesson"`
}

// CatalogLesson is one lesson entry of a catalog file.
type CatalogLesson struct {
	Name   string   `toml:"name"`
	Topics []string `toml:"topics"`
}

// LoadCatalog reads a catalog file. Unlike LoadConfig the file must exist.
func LoadCatalog(path string) ([]model.Lesson, error) {
	var file CatalogFile
	md, err := toml.DecodeFile(path, &file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown catalog key %q", undecoded[0].String())
	}
	lessons := make([]model.Lesson, 0, len(file.Lessons))
	for i, l := range file.Lessons {
		name := strings.TrimSpace(l.Name)
		if name == "" {
			return nil, fmt.Errorf("lesson %d has no name", i+1)
		}
		lesson := model.Lesson{Name: name}
		for _, topic := range l.Topics {
			topic = strings.TrimSpace(topic)
			if topic == "" {
				continue
			}
			lesson.Topics = append(lesson.Topics, model.Topic{Name: topic})
		}
		lessons = append(lessons, lesson)
	}
	return lessons, nil
}
