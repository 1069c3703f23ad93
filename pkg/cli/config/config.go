package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/duesoon/pkg/domain/model"
	"github.com/secmon-lab/duesoon/pkg/domain/types"
)

var categoryPattern = regexp.MustCompile(`^[a-z0-9]+(_[a-z0-9]+)*$`)

// AppConfig represents the optional TOML configuration of the due-soon job
type AppConfig struct {
	Labels   Labels    `toml:"labels"`
	Profiles []Profile `toml:"profile"`
}

// Labels overrides the category labels of outbound messages
type Labels struct {
	Default    string            `toml:"default"`
	Categories map[string]string `toml:"categories"`
}

// Profile overrides the due-soon parameters of one work item kind. Empty
// texts keep the built-in ones.
type Profile struct {
	Kind           string `toml:"kind"`
	LookaheadHours int    `toml:"lookahead_hours"`

	PrepareTitle    string `toml:"prepare_title"`
	PrepareMessage  string `toml:"prepare_message"`
	PrepareNote     string `toml:"prepare_note"`
	EscalateTitle   string `toml:"escalate_title"`
	EscalateMessage string `toml:"escalate_message"`
	EscalateNote    string `toml:"escalate_note"`
}

// Validate checks if the Labels are valid
func (l *Labels) Validate() error {
	for category, label := range l.Categories {
		if !categoryPattern.MatchString(category) {
			return goerr.Wrap(ErrInvalidCategory, "category must be lowercase alphanumeric with underscores",
				goerr.V(CategoryKey, category))
		}
		if label == "" {
			return goerr.Wrap(ErrInvalidCategory, "category label is empty", goerr.V(CategoryKey, category))
		}
	}
	return nil
}

// Validate checks if the Profile is valid
func (p *Profile) Validate() error {
	if !types.WorkItemKind(p.Kind).IsValid() {
		return goerr.Wrap(ErrInvalidKind, "unknown work item kind", goerr.V(KindKey, p.Kind))
	}
	if p.LookaheadHours < 0 {
		return goerr.Wrap(ErrInvalidLookahead, "lookahead_hours must not be negative",
			goerr.V(KindKey, p.Kind),
			goerr.V("lookahead_hours", p.LookaheadHours))
	}
	return nil
}

func (p *Profile) texts(kind types.WorkItemKind) model.ProfileTexts {
	texts := model.DefaultProfileTexts(kind)
	override := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	override(&texts.PrepareTitle, p.PrepareTitle)
	override(&texts.PrepareMessage, p.PrepareMessage)
	override(&texts.PrepareNote, p.PrepareNote)
	override(&texts.EscalateTitle, p.EscalateTitle)
	override(&texts.EscalateMessage, p.EscalateMessage)
	override(&texts.EscalateNote, p.EscalateNote)
	return texts
}

// Build compiles the profile. Zero lookahead_hours keeps the built-in window.
func (p *Profile) Build(loc *time.Location) (*model.WorkItemProfile, error) {
	kind := types.WorkItemKind(p.Kind)
	lookahead, taskType := model.DefaultProfileParams(kind)
	if p.LookaheadHours > 0 {
		lookahead = time.Duration(p.LookaheadHours) * time.Hour
	}

	profile, err := model.NewWorkItemProfile(kind, lookahead, taskType, p.texts(kind), loc)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(KindKey, p.Kind))
	}
	return profile, nil
}

// Validate checks if the AppConfig is valid, including that every profile
// template compiles
func (a *AppConfig) Validate() error {
	if err := a.Labels.Validate(); err != nil {
		return goerr.Wrap(err, "invalid labels")
	}

	kinds := make(map[string]bool)
	for i, p := range a.Profiles {
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid profile", goerr.V(ProfileIndexKey, i))
		}
		if kinds[p.Kind] {
			return goerr.Wrap(ErrDuplicateProfile, "profile kind defined twice",
				goerr.V(KindKey, p.Kind),
				goerr.V(ProfileIndexKey, i))
		}
		kinds[p.Kind] = true

		profile, err := p.Build(time.UTC)
		if err != nil {
			return goerr.Wrap(err, "invalid profile", goerr.V(ProfileIndexKey, i))
		}
		if err := dryRender(profile); err != nil {
			return goerr.Wrap(err, "invalid profile", goerr.V(ProfileIndexKey, i))
		}
	}

	return nil
}

// dryRender executes the templates once so that unknown fields fail at load
// time instead of during a cycle
func dryRender(profile *model.WorkItemProfile) error {
	item := &model.WorkItem{Kind: profile.Kind}
	if _, err := profile.PrepareContent(item); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(KindKey, profile.Kind))
	}
	if _, err := profile.EscalateContent(item); err != nil {
		return goerr.Wrap(ErrInvalidConfig, err.Error(), goerr.V(KindKey, profile.Kind))
	}
	return nil
}

// LoadAppConfig loads the configuration from a TOML file
func LoadAppConfig(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML config",
			goerr.V(ConfigPathKey, path),
			goerr.V("error", err.Error()))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// LabelTable merges the configured labels over the built-in table
func (a *AppConfig) LabelTable() *model.LabelTable {
	overrides := make(map[types.Category]string, len(a.Labels.Categories))
	for category, label := range a.Labels.Categories {
		overrides[types.Category(category)] = label
	}
	return model.DefaultLabelTable().With(overrides).WithFallback(a.Labels.Default)
}

// ProfileRegistry returns built-in profiles for every kind, replaced by the
// configured ones where present
func (a *AppConfig) ProfileRegistry(loc *time.Location) (*model.ProfileRegistry, error) {
	var profiles []*model.WorkItemProfile
	configured := make(map[types.WorkItemKind]bool)
	for _, p := range a.Profiles {
		configured[types.WorkItemKind(p.Kind)] = true
	}

	for _, kind := range types.AllWorkItemKinds() {
		if configured[kind] {
			continue
		}
		lookahead, taskType := model.DefaultProfileParams(kind)
		p, err := model.NewWorkItemProfile(kind, lookahead, taskType, model.DefaultProfileTexts(kind), loc)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build default profile", goerr.V(KindKey, kind))
		}
		profiles = append(profiles, p)
	}

	for i := range a.Profiles {
		p, err := a.Profiles[i].Build(loc)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	return model.NewProfileRegistry(profiles...), nil
}
