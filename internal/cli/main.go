package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forPelevin/montager/internal/config"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	if err := newRootCmd(viper.New()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "montager",
		Short:         "Turn a static panel recording into a speaker-following montage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML file with editing constants")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("cache", "", "Cache directory (default $TMPDIR/montager)")

	// Editing constants; MONTAGER_* env vars and --config fill the same keys.
	d := config.Defaults()
	pf.Float64("min-speech-duration", d.MinSpeechDuration, "Speech shorter than this many seconds becomes wide")
	pf.Float64("short-gap-threshold", d.ShortGapThreshold, "Gaps shorter than this extend the previous shot")
	pf.Float64("long-segment-threshold", d.LongSegmentThreshold, "Shots at least this long get wide breaks")
	pf.Float64("break-interval", d.BreakInterval, "Seconds between wide breaks")
	pf.Float64("break-duration", d.BreakDuration, "Length of each wide break")
	pf.Int("output-width", d.OutputWidth, "Output width in pixels")
	pf.Int("output-height", d.OutputHeight, "Output height in pixels")
	pf.Float64("face-proximity", d.FaceProximity, "Max horizontal gap in pixels between faces of one speaker")
	pf.Int("min-face-samples", d.MinFaceSamples, "Face observations needed to keep a speaker")
	for _, name := range constantFlags {
		_ = v.BindPFlag(flagKey(name), pf.Lookup(name))
	}
	_ = v.BindPFlag("log_level", pf.Lookup("log-level"))
	_ = v.BindPFlag("cache_dir", pf.Lookup("cache"))

	root.AddCommand(
		newSceneCmd(v),
		newVoiceMapCmd(v),
		newEDLCmd(v),
		newPreviewCmd(v),
		newRenderCmd(v),
	)
	return root
}

var constantFlags = []string{
	"min-speech-duration",
	"short-gap-threshold",
	"long-segment-threshold",
	"break-interval",
	"break-duration",
	"output-width",
	"output-height",
	"face-proximity",
	"min-face-samples",
}

func newSceneCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scene <input>",
		Short: "Detect speakers from face observations and cache the scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd, v, args[0])
		},
	}
	addFacesFlag(cmd)
	return cmd
}

func newVoiceMapCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voicemap <input>",
		Short: "Detect who speaks when and cache the voice map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVoiceMap(cmd, v, args[0])
		},
	}
	addFacesFlag(cmd)
	addWhisperFlags(cmd)
	return cmd
}

func newEDLCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edl <input>",
		Short: "Print the edit decision list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEDL(cmd, v, args[0])
		},
	}
	cmd.Flags().String("format", "json", "Output format: json or yaml")
	cmd.Flags().String("out", "", "Write to this file instead of stdout")
	addFacesFlag(cmd)
	addWhisperFlags(cmd)
	return cmd
}

func newPreviewCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <input>",
		Short: "Write an HTML page that plays the video through the edit decisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, v, args[0])
		},
	}
	addFacesFlag(cmd)
	addWhisperFlags(cmd)
	return cmd
}

func newRenderCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Render the montage with ffmpeg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, v, args[0])
		},
	}
	cmd.Flags().String("out", "", "Output MP4 (default <input>_montage.mp4)")
	cmd.Flags().Bool("labels", false, "Burn speaker names as lower thirds")
	addFacesFlag(cmd)
	addWhisperFlags(cmd)
	return cmd
}

func addFacesFlag(cmd *cobra.Command) {
	cmd.Flags().String("faces", "", "Face observations file (default <input>.faces.yaml sidecar)")
}

func addWhisperFlags(cmd *cobra.Command) {
	cmd.Flags().String("whisper-bin", "", "whisper.cpp binary (env WHISPER_BIN)")
	cmd.Flags().String("whisper-model", "", "whisper.cpp model (env WHISPER_MODEL)")
	cmd.Flags().Bool("no-diarize", false, "Disable whisper speaker turn detection")
	// Hidden tuning flag (internal)
	_ = cmd.Flags().MarkHidden("no-diarize")
}
