package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/forPelevin/montager/internal/domain/speakers"
	"github.com/forPelevin/montager/internal/domain/timeline"
)

const EnvPrefix = "MONTAGER"

// Constants are the editing thresholds supplied by the host application.
type Constants struct {
	MinSpeechDuration    float64 `mapstructure:"min_speech_duration" yaml:"min_speech_duration"`
	ShortGapThreshold    float64 `mapstructure:"short_gap_threshold" yaml:"short_gap_threshold"`
	LongSegmentThreshold float64 `mapstructure:"long_segment_threshold" yaml:"long_segment_threshold"`
	BreakInterval        float64 `mapstructure:"break_interval" yaml:"break_interval"`
	BreakDuration        float64 `mapstructure:"break_duration" yaml:"break_duration"`
	OutputWidth          int     `mapstructure:"output_width" yaml:"output_width"`
	OutputHeight         int     `mapstructure:"output_height" yaml:"output_height"`
	FaceProximity        float64 `mapstructure:"face_proximity" yaml:"face_proximity"`
	MinFaceSamples       int     `mapstructure:"min_face_samples" yaml:"min_face_samples"`
}

func Defaults() Constants {
	return Constants{
		MinSpeechDuration:    2.0,
		ShortGapThreshold:    3.0,
		LongSegmentThreshold: 15.0,
		BreakInterval:        8.0,
		BreakDuration:        2.0,
		OutputWidth:          1920,
		OutputHeight:         1080,
		FaceProximity:        200,
		MinFaceSamples:       3,
	}
}

func (c Constants) Validate() error {
	var errs []error
	positive := map[string]float64{
		"min_speech_duration":    c.MinSpeechDuration,
		"short_gap_threshold":    c.ShortGapThreshold,
		"long_segment_threshold": c.LongSegmentThreshold,
		"break_interval":         c.BreakInterval,
		"break_duration":         c.BreakDuration,
		"face_proximity":         c.FaceProximity,
	}
	for _, k := range sortedKeys(positive) {
		if positive[k] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0", k))
		}
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		errs = append(errs, fmt.Errorf("output size must be > 0, got %dx%d", c.OutputWidth, c.OutputHeight))
	}
	if c.MinFaceSamples < 1 {
		errs = append(errs, errors.New("min_face_samples must be >= 1"))
	}
	if c.BreakDuration >= c.BreakInterval {
		errs = append(errs, errors.New("break_duration must be < break_interval"))
	}
	return errors.Join(errs...)
}

func (c Constants) Timeline() timeline.Params {
	return timeline.Params{
		MinSpeechDuration:    c.MinSpeechDuration,
		ShortGapThreshold:    c.ShortGapThreshold,
		LongSegmentThreshold: c.LongSegmentThreshold,
		BreakInterval:        c.BreakInterval,
		BreakDuration:        c.BreakDuration,
	}
}

func (c Constants) Speakers() speakers.Params {
	return speakers.Params{
		OutputWidth:  c.OutputWidth,
		OutputHeight: c.OutputHeight,
		Proximity:    c.FaceProximity,
		MinSamples:   c.MinFaceSamples,
	}
}

// SetDefaults registers every constant on v so env and flag lookups work
// even without a config file.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("min_speech_duration", d.MinSpeechDuration)
	v.SetDefault("short_gap_threshold", d.ShortGapThreshold)
	v.SetDefault("long_segment_threshold", d.LongSegmentThreshold)
	v.SetDefault("break_interval", d.BreakInterval)
	v.SetDefault("break_duration", d.BreakDuration)
	v.SetDefault("output_width", d.OutputWidth)
	v.SetDefault("output_height", d.OutputHeight)
	v.SetDefault("face_proximity", d.FaceProximity)
	v.SetDefault("min_face_samples", d.MinFaceSamples)
	v.SetDefault("log_level", "info")
}

// Load layers defaults, an optional YAML file and MONTAGER_* env vars.
// Flags bound to v by the caller take precedence over all of them.
func Load(v *viper.Viper, path string) (Constants, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Constants{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Constants
	if err := v.Unmarshal(&c); err != nil {
		return Constants{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Constants{}, err
	}
	return c, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
