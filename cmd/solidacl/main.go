package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/itme/solidacl/internal/pod"
	"github.com/itme/solidacl/internal/version"
	"github.com/itme/solidacl/internal/wac"
)

var rootCmd = &cobra.Command{
	Use:     "solidacl",
	Short:   "Inspect and edit hierarchical pod ACLs",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real config comes from flags and SOLIDACL_* env
		_ = godotenv.Load()

		viper.SetEnvPrefix("SOLIDACL")
		viper.AutomaticEnv()
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		setupLogger(viper.GetBool("debug"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("token", "", "Bearer token for authenticated requests")
	rootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Per-request timeout")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(newGetCmd())
	rootCmd.AddCommand(newSetCmd())
	rootCmd.AddCommand(newRmCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:   level,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	slog.SetDefault(slog.New(handler))
}

func newPodClient() (*pod.Client, error) {
	opts := []pod.Option{
		pod.WithTimeout(viper.GetDuration("timeout")),
	}
	if token := viper.GetString("token"); token != "" {
		opts = append(opts, pod.WithBearerToken(token))
	}
	return pod.New(opts...)
}

// granteeFlags wires the shared grantee selector flags onto a command.
func granteeFlags(cmd *cobra.Command) {
	cmd.Flags().String("agent", "", "Agent WebID")
	cmd.Flags().String("group", "", "Group IRI")
	cmd.Flags().Bool("public", false, "Everyone")
	cmd.Flags().Bool("authenticated", false, "Any logged-in agent")
}

func granteeFromFlags(cmd *cobra.Command) (wac.Grantee, error) {
	agent, _ := cmd.Flags().GetString("agent")
	group, _ := cmd.Flags().GetString("group")
	public, _ := cmd.Flags().GetBool("public")
	authenticated, _ := cmd.Flags().GetBool("authenticated")

	selected := 0
	var g wac.Grantee
	if agent != "" {
		g = wac.Agent(agent)
		selected++
	}
	if group != "" {
		g = wac.Group(group)
		selected++
	}
	if public {
		g = wac.Public()
		selected++
	}
	if authenticated {
		g = wac.Authenticated()
		selected++
	}
	if selected != 1 {
		return wac.Grantee{}, fmt.Errorf("exactly one of --agent, --group, --public, --authenticated is required")
	}
	return g, nil
}

func parseModes(csv string) (wac.AccessModes, error) {
	var modes wac.AccessModes
	if csv == "" {
		return modes, nil
	}
	for _, part := range strings.Split(csv, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "read":
			modes.Read = true
		case "append":
			modes.Append = true
		case "write":
			modes.Write = true
			modes.Append = true
		case "control":
			modes.Control = true
		default:
			return wac.AccessModes{}, fmt.Errorf("unknown mode %q", part)
		}
	}
	return modes, nil
}

type accessReport struct {
	URL      string `json:"url"`
	Resolved bool   `json:"resolved"`
	Read     bool   `json:"read"`
	Append   bool   `json:"append"`
	Write    bool   `json:"write"`
	Control  bool   `json:"control"`
}

func printReport(url string, modes wac.AccessModes, resolved bool) error {
	out, err := json.MarshalIndent(&accessReport{
		URL:      url,
		Resolved: resolved,
		Read:     modes.Read,
		Append:   modes.Append,
		Write:    modes.Write,
		Control:  modes.Control,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
