package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"mail2slack/pkg/config"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage mail2slack as a system service",
	Long: `Install and control mail2slack as a system service:
- Linux: systemd
- macOS: launchd
- Windows: Windows Service Manager

Examples:
  sudo mail2slack service install
  sudo mail2slack service start
  sudo mail2slack service status
  sudo mail2slack service uninstall`,
}

// program implements service.Interface.
type program struct {
	app    *fx.App
	logger service.Logger
}

// Start implements service.Interface.Start
func (p *program) Start(s service.Service) error {
	if p.logger != nil {
		p.logger.Info("Starting mail2slack service")
	}

	p.app = newServerApp(fx.NopLogger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return p.app.Start(ctx)
}

// Stop implements service.Interface.Stop
func (p *program) Stop(s service.Service) error {
	if p.logger != nil {
		p.logger.Info("Stopping mail2slack service")
	}
	if p.app == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.app.Stop(ctx); err != nil {
		if p.logger != nil {
			p.logger.Errorf("Error stopping service: %v", err)
		}
		return err
	}
	return nil
}

// ServiceConfig returns the service configuration. The config path given on
// the command line (or through the environment) is baked into the service
// arguments.
func ServiceConfig() *service.Config {
	args := []string{"service", "run"}

	path := strings.TrimSpace(configPath)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(config.ConfigPathEnv))
	}
	if path != "" {
		args = append([]string{"-c", path}, args...)
	}

	return &service.Config{
		Name:        "mail2slack",
		DisplayName: "mail2slack",
		Description: "Posts email messages to Slack channels for the mail add-on",
		Arguments:   args,
	}
}

func newSystemService() (service.Service, *program, error) {
	prg := &program{}
	s, err := service.New(prg, ServiceConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("creating service: %w", err)
	}
	return s, prg, nil
}

// controlAction runs one of the service manager verbs.
func controlAction(action string) error {
	s, _, err := newSystemService()
	if err != nil {
		return err
	}
	if err := service.Control(s, action); err != nil {
		return fmt.Errorf("%s service: %w", action, err)
	}
	fmt.Printf("Service %s: ok\n", action)
	return nil
}

func statusText(status service.Status) string {
	switch status {
	case service.StatusRunning:
		return "Running"
	case service.StatusStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

func runServiceStatus() error {
	s, _, err := newSystemService()
	if err != nil {
		return err
	}
	status, err := s.Status()
	if err != nil {
		return fmt.Errorf("getting service status: %w", err)
	}
	fmt.Printf("Service Status: %s\n", statusText(status))
	return nil
}

// runService is invoked by the service manager.
func runService() error {
	s, prg, err := newSystemService()
	if err != nil {
		return err
	}

	logger, err := s.Logger(nil)
	if err != nil {
		return fmt.Errorf("creating service logger: %w", err)
	}
	prg.logger = logger

	if err := s.Run(); err != nil {
		logger.Error(err)
		return err
	}
	return nil
}

func init() {
	for _, action := range service.ControlAction {
		action := action
		serviceCmd.AddCommand(&cobra.Command{
			Use:   action,
			Short: fmt.Sprintf("%s the system service", strings.ToUpper(action[:1])+action[1:]),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := controlAction(action); err != nil {
					fmt.Fprintln(os.Stderr, "Note: managing system services requires administrator privileges.")
					return err
				}
				return nil
			},
		})
	}

	serviceCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the system service status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServiceStatus()
		},
	})

	serviceCmd.AddCommand(&cobra.Command{
		Use:    "run",
		Short:  "Run under the service manager",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runService()
		},
	})
}
