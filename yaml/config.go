// Package yaml loads optional configuration overrides from a YAML file.
//
// The file is an overlay: absent fields keep their defaults, durations use
// Go syntax ("500ms", "30s"), and a sources list replaces the default list
// wholesale since category membership only makes sense as a unit.
package yaml

import (
	"os"
	"time"

	"github.com/fwojciec/docmirror"
	"gopkg.in/yaml.v3"
)

type fileConfig struct {
	DocsDir        string         `yaml:"docs_dir"`
	UserAgent      string         `yaml:"user_agent"`
	RequestTimeout string         `yaml:"request_timeout"`
	FetchDelay     string         `yaml:"fetch_delay"`
	Description    string         `yaml:"description"`
	Repo           *fileRepo      `yaml:"repo"`
	Retry          *fileRetry     `yaml:"retry"`
	Sources        []fileSource   `yaml:"sources"`
	Changelog      *fileChangelog `yaml:"changelog"`
}

type fileRepo struct {
	Repository string `yaml:"repository"`
	Ref        string `yaml:"ref"`
	DocsPath   string `yaml:"docs_path"`
}

type fileRetry struct {
	MaxAttempts        int    `yaml:"max_attempts"`
	BaseDelay          string `yaml:"base_delay"`
	MaxDelay           string `yaml:"max_delay"`
	RetryAfterFallback string `yaml:"retry_after_fallback"`
}

type fileSource struct {
	Name        string         `yaml:"name"`
	Label       string         `yaml:"label"`
	LinkListURL string         `yaml:"link_list_url"`
	DocPrefix   string         `yaml:"doc_prefix"`
	Categories  []fileCategory `yaml:"categories"`
}

type fileCategory struct {
	Name  string   `yaml:"name"`
	Pages []string `yaml:"pages"`
}

type fileChangelog struct {
	URL      string `yaml:"url"`
	PageURL  string `yaml:"page_url"`
	Filename string `yaml:"filename"`
	Label    string `yaml:"label"`
	Title    string `yaml:"title"`
}

// Load overlays the YAML file at path onto base and returns the result.
func Load(path string, base docmirror.Config) (docmirror.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, docmirror.Errorf(docmirror.ECONFIG, "read config: %v", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return base, docmirror.Errorf(docmirror.ECONFIG, "parse config %s: %v", path, err)
	}
	return merge(base, &fc)
}

func merge(base docmirror.Config, fc *fileConfig) (docmirror.Config, error) {
	cfg := base

	if fc.DocsDir != "" {
		cfg.DocsDir = fc.DocsDir
	}
	if fc.UserAgent != "" {
		cfg.UserAgent = fc.UserAgent
	}
	if fc.Description != "" {
		cfg.Description = fc.Description
	}

	var err error
	if cfg.RequestTimeout, err = overlayDuration(cfg.RequestTimeout, fc.RequestTimeout, "request_timeout"); err != nil {
		return base, err
	}
	if cfg.FetchDelay, err = overlayDuration(cfg.FetchDelay, fc.FetchDelay, "fetch_delay"); err != nil {
		return base, err
	}

	if fc.Repo != nil {
		if fc.Repo.Repository != "" {
			if !docmirror.ValidRepository(fc.Repo.Repository) {
				return base, docmirror.Errorf(docmirror.ECONFIG, "invalid repo.repository %q", fc.Repo.Repository)
			}
			cfg.Repo.Repository = fc.Repo.Repository
		}
		if fc.Repo.Ref != "" {
			if !docmirror.ValidRef(fc.Repo.Ref) {
				return base, docmirror.Errorf(docmirror.ECONFIG, "invalid repo.ref %q", fc.Repo.Ref)
			}
			cfg.Repo.Ref = fc.Repo.Ref
		}
		if fc.Repo.DocsPath != "" {
			cfg.Repo.DocsPath = fc.Repo.DocsPath
		}
	}

	if fc.Retry != nil {
		if fc.Retry.MaxAttempts > 0 {
			cfg.Retry.MaxAttempts = fc.Retry.MaxAttempts
		}
		if cfg.Retry.BaseDelay, err = overlayDuration(cfg.Retry.BaseDelay, fc.Retry.BaseDelay, "retry.base_delay"); err != nil {
			return base, err
		}
		if cfg.Retry.MaxDelay, err = overlayDuration(cfg.Retry.MaxDelay, fc.Retry.MaxDelay, "retry.max_delay"); err != nil {
			return base, err
		}
		if cfg.Retry.RetryAfterFallback, err = overlayDuration(cfg.Retry.RetryAfterFallback, fc.Retry.RetryAfterFallback, "retry.retry_after_fallback"); err != nil {
			return base, err
		}
	}

	if len(fc.Sources) > 0 {
		sources := make([]docmirror.SourceConfig, 0, len(fc.Sources))
		for _, fs := range fc.Sources {
			src := docmirror.SourceConfig{
				Name:        docmirror.Source(fs.Name),
				Label:       fs.Label,
				LinkListURL: fs.LinkListURL,
				DocPrefix:   fs.DocPrefix,
			}
			for _, fcat := range fs.Categories {
				src.Categories = append(src.Categories, docmirror.CategorySet{
					Name:  docmirror.Category(fcat.Name),
					Pages: fcat.Pages,
				})
			}
			if err := src.Validate(); err != nil {
				return base, err
			}
			sources = append(sources, src)
		}
		cfg.Sources = sources
	}

	if fc.Changelog != nil {
		if fc.Changelog.URL != "" {
			cfg.Changelog.URL = fc.Changelog.URL
		}
		if fc.Changelog.PageURL != "" {
			cfg.Changelog.PageURL = fc.Changelog.PageURL
		}
		if fc.Changelog.Filename != "" {
			cfg.Changelog.Filename = fc.Changelog.Filename
		}
		if fc.Changelog.Label != "" {
			cfg.Changelog.Label = fc.Changelog.Label
		}
		if fc.Changelog.Title != "" {
			cfg.Changelog.Title = fc.Changelog.Title
		}
	}

	return cfg, nil
}

func overlayDuration(base time.Duration, raw, field string) (time.Duration, error) {
	if raw == "" {
		return base, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, docmirror.Errorf(docmirror.ECONFIG, "invalid %s %q: %v", field, raw, err)
	}
	if d < 0 {
		return 0, docmirror.Errorf(docmirror.ECONFIG, "invalid %s %q: must not be negative", field, raw)
	}
	return d, nil
}
