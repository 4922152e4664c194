package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"marimo-hub-be/internal/dto"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	serverURL string
	token     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "notebookctl",
		Short:         "Client for the marimo notebook hub",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MARIMO_HUB_URL", "http://localhost:8080"), "hub base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("MARIMO_TOKEN"), "bearer token for save")

	rootCmd.AddCommand(
		newSaveCmd(),
		newGetCmd(),
		newGenerateCmd(),
		newHealthCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newSaveCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "save <file>",
		Short: "Upload a notebook file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			res, err := newHubClient(serverURL, token).Save(&dto.SaveNotebookRequest{
				Id:       id,
				Filename: filepath.Base(args[0]),
				Content:  string(content),
			})
			if err != nil {
				return err
			}

			color.Green("Saved %s as %s", res.Filename, res.Id)
			fmt.Println(strings.TrimRight(serverURL, "/") + res.Url)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "notebook id (defaults to the file name)")
	return cmd
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a stored notebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := newHubClient(serverURL, token).Get(args[0])
			if err != nil {
				return err
			}
			fmt.Print(content)
			return nil
		},
	}
}

func newGenerateCmd() *cobra.Command {
	var (
		diagram  string
		language string
		prompt   string
		out      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a notebook from a diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.HasPrefix(diagram, "@") {
				b, err := os.ReadFile(strings.TrimPrefix(diagram, "@"))
				if err != nil {
					return err
				}
				diagram = string(b)
			}

			res, err := newHubClient(serverURL, token).Generate(&dto.GenerateNotebookRequest{
				Diagram:  diagram,
				Language: language,
				Prompt:   prompt,
			})
			if err != nil {
				return err
			}

			if res.Fallback {
				color.Yellow("Model unavailable, got the fallback notebook")
			} else {
				color.Green("Generated %s", res.ServerId)
			}
			fmt.Println(strings.TrimRight(serverURL, "/") + res.ViewerUrl)

			if out == "" {
				return nil
			}
			return os.WriteFile(out, []byte(res.MarimoNotebook), 0o644)
		},
	}

	cmd.Flags().StringVar(&diagram, "diagram", "", "diagram text, or @file to read it")
	cmd.Flags().StringVar(&language, "language", "python", "target language")
	cmd.Flags().StringVar(&prompt, "prompt", "", "extra instructions")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the notebook to this file")
	_ = cmd.MarkFlagRequired("diagram")
	return cmd
}

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHubClient(serverURL, token).Health()
			if err != nil {
				return err
			}

			color.Cyan("%s (%s mode, %s store)", h.Status, h.Mode, h.Store)
			fmt.Printf("notebooks in store: %d\n", h.Counts.Notebooks)
			fmt.Printf("files in %s: %d\n", h.NotebooksDir, h.Counts.Files)
			for _, name := range h.Notebooks {
				fmt.Printf("  - %s\n", name)
			}
			if h.Runtime.Enabled {
				fmt.Printf("runtime: pid=%d ready=%t %s\n", h.Runtime.Pid, h.Runtime.Ready, h.Runtime.Notebook)
			} else {
				fmt.Println("runtime: not managed")
			}
			return nil
		},
	}
}
