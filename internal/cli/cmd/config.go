package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/motors/internal/command"
	"github.com/berrythewa/motors/internal/config"
)

// newConfigCmd creates the config command
func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect client configuration",
	}

	cmd.AddCommand(newConfigShowCmd(a))
	return cmd
}

// effectiveConfig is what config show prints: the client settings after
// defaults, file and environment, plus the speeds read from the motors file.
type effectiveConfig struct {
	Client *config.Config `json:"client" yaml:"client"`
	Motors motorsView     `json:"motors" yaml:"motors"`
}

type motorsView struct {
	SpeedPan     int32  `json:"speed_pan" yaml:"speed_pan"`
	SpeedTilt    int32  `json:"speed_tilt" yaml:"speed_tilt"`
	DefaultSpeed int32  `json:"default_speed" yaml:"default_speed"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newConfigShowCmd(a *app) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			view := effectiveConfig{Client: a.cfg}
			speeds, err := config.LoadMotors(a.cfg.MotorsConfig)
			if err != nil {
				view.Motors.Error = err.Error()
			}
			view.Motors.SpeedPan = speeds.Pan
			view.Motors.SpeedTilt = speeds.Tilt
			view.Motors.DefaultSpeed = command.DefaultSpeed(speeds.Pan, speeds.Tilt)

			out := cmd.OutOrStdout()
			switch outputFormat {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(view); err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				return enc.Close()
			default:
				return fmt.Errorf("unsupported format: %s", outputFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "yaml", "output format (yaml or json)")
	return cmd
}
