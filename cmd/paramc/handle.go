package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zoobzio/param"
	"github.com/zoobzio/param/bson"
	"github.com/zoobzio/param/compiler"
	"github.com/zoobzio/param/json"
	"github.com/zoobzio/param/lambda"
	"github.com/zoobzio/param/msgpack"
	"github.com/zoobzio/param/yaml"
)

var handleCmd = &cobra.Command{
	Use:   "handle [file]",
	Short: "Answer a compile event read from a file or stdin",
	Long: `Answer a compile event read from a file or stdin. Flags can also be set
with environment variables of the form PARAMC_<flag> (e.g. PARAMC_FORMAT=yaml).
REVISION and PARAM_FINGERPRINT configure the handler.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: bindFlags,
	RunE:    runHandle,
}

func init() {
	key := "format"
	handleCmd.Flags().String(key, "json", "event and response encoding (json, yaml, msgpack, bson)")

	key = "boards"
	handleCmd.Flags().String(key, "", "comma-separated boards the dry run accepts (empty accepts any)")

	key = "log-level"
	handleCmd.Flags().String(key, "info", "diagnostic log level (debug, info, warn, error, disabled)")

	key = "metrics"
	handleCmd.Flags().Bool(key, false, "write Prometheus metrics to stderr after answering")
}

func bindFlags(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

func runHandle(cmd *cobra.Command, args []string) error {
	c, err := codecFor(viper.GetString("format"))
	if err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := zerolog.New(cmd.ErrOrStderr()).Level(level).With().Timestamp().Logger()

	cfg, err := lambda.LoadConfig()
	if err != nil {
		return err
	}

	var dry compiler.DryRun
	if boards := viper.GetString("boards"); boards != "" {
		dry.Boards = strings.Split(boards, ",")
	}

	h, err := lambda.New(dry, cfg, lambda.WithLogger(logger))
	if err != nil {
		return err
	}

	body, err := readEvent(cmd, args)
	if err != nil {
		return err
	}

	out, err := h.HandleBytes(cmd.Context(), c, body)
	if err != nil {
		return err
	}
	if _, err := cmd.OutOrStdout().Write(out); err != nil {
		return err
	}

	if viper.GetBool("metrics") {
		metrics.WritePrometheus(cmd.ErrOrStderr(), false)
	}
	return nil
}

func codecFor(format string) (param.Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return json.New(), nil
	case "yaml", "yml":
		return yaml.New(), nil
	case "msgpack":
		return msgpack.New(), nil
	case "bson":
		return bson.New(), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func readEvent(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}
