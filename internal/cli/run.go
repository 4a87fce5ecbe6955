package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/forPelevin/montager/internal/config"
	"github.com/forPelevin/montager/internal/pipeline"
	"github.com/forPelevin/montager/internal/store"
	"github.com/forPelevin/montager/internal/types"
)

func runScene(cmd *cobra.Command, v *viper.Viper, input string) error {
	res, err := execute(cmd, v, input, pipeline.DetectScene)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d speaker(s) -> %s\n", len(res.Scene.Speakers), res.Path)
	return nil
}

func runVoiceMap(cmd *cobra.Command, v *viper.Viper, input string) error {
	res, err := execute(cmd, v, input, pipeline.DetectVoiceMap)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d segment(s) -> %s\n", len(res.Voice.Segments), res.Path)
	return nil
}

func runEDL(cmd *cobra.Command, v *viper.Viper, input string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	if format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (want json or yaml)", format)
	}

	res, err := execute(cmd, v, input, pipeline.BuildEDL)
	if err != nil {
		return err
	}
	b, err := encodeEDL(res.EDL, format)
	if err != nil {
		return err
	}
	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(b)
		return err
	}
	return store.WriteFileAtomic(outPath, b)
}

func runPreview(cmd *cobra.Command, v *viper.Viper, input string) error {
	res, err := execute(cmd, v, input, pipeline.Preview)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func runRender(cmd *cobra.Command, v *viper.Viper, input string) error {
	res, err := execute(cmd, v, input, pipeline.Render)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Path)
	return nil
}

func execute(cmd *cobra.Command, v *viper.Viper, input string, c pipeline.Command) (pipeline.Result, error) {
	cfg, err := buildConfig(cmd, v, input)
	if err != nil {
		return pipeline.Result{}, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 3*time.Hour)
	defer cancel()
	return pipeline.Run(ctx, cfg, c)
}

func buildConfig(cmd *cobra.Command, v *viper.Viper, input string) (pipeline.Config, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	consts, err := config.Load(v, cfgPath)
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	log, err := newLogger(v.GetString("log_level"), cmd.ErrOrStderr())
	if err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return pipeline.Config{}, err
	}

	cfg := pipeline.Config{
		InputMP4:  absIn,
		Log:       log,
		CacheDir:  v.GetString("cache_dir"),
		Constants: consts,

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		WhisperBin:     getenvDefault("WHISPER_BIN", ".cache/bin/whisper.cpp"),
		WhisperModel:   getenvDefault("WHISPER_MODEL", ".cache/models/ggml-base.bin"),
		WhisperDiarize: true,
	}

	flags := cmd.Flags()
	if f := flags.Lookup("faces"); f != nil {
		cfg.FacesPath = f.Value.String()
	}
	if f := flags.Lookup("whisper-bin"); f != nil && f.Changed {
		cfg.WhisperBin = f.Value.String()
	}
	if f := flags.Lookup("whisper-model"); f != nil && f.Changed {
		cfg.WhisperModel = f.Value.String()
	}
	if noDiarize, err := flags.GetBool("no-diarize"); err == nil {
		cfg.WhisperDiarize = !noDiarize
	}
	if f := flags.Lookup("out"); f != nil && cmd.Name() == "render" {
		cfg.OutMP4 = f.Value.String()
	}
	if labels, err := flags.GetBool("labels"); err == nil {
		cfg.Labels = labels
	}

	if err := cfg.Validate(); err != nil {
		return pipeline.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newLogger(level string, w io.Writer) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: os.Getenv("NO_COLOR") != "", FullTimestamp: true})
	return l, nil
}

func encodeEDL(list types.EDL, format string) ([]byte, error) {
	if list == nil {
		list = types.EDL{}
	}
	switch format {
	case "json":
		b, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(b, '\n'), nil
	case "yaml":
		var sb strings.Builder
		enc := yaml.NewEncoder(&sb)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return []byte(sb.String()), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
