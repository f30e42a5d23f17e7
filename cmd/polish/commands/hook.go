package commands

import (
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.trai.ch/polish/internal/core/domain"
)

func (c *CLI) newHookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hook",
		Short: "Editor integration hooks",
	}
	cmd.AddCommand(c.newWillSaveCmd())
	return cmd
}

func (c *CLI) newWillSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "will-save",
		Short: "Transform a document about to be saved",
		Long: "Reads the unsaved document from stdin and writes the text to commit to stdout.\n" +
			"Saves are debounced by the workspace daemon, which is started on demand.\n" +
			"The original text is echoed back whenever the transform does not apply.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("path")
			language, _ := cmd.Flags().GetString("language")

			abs, err := filepath.Abs(path)
			if err != nil {
				return err
			}

			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			root, err := c.workspace(abs)
			if err != nil {
				return err
			}

			lang := domain.Language(language)
			if lang == "" {
				lang, _ = domain.LanguageForPath(abs)
			}

			res := c.app.ForwardSave(cmd.Context(), domain.SaveRequest{
				Path:     abs,
				Root:     root,
				Language: lang,
				Text:     string(text),
			})

			_, err = io.WriteString(cmd.OutOrStdout(), res.Text)
			return err
		},
	}
	cmd.Flags().String("path", "", "Path of the document being saved")
	cmd.Flags().String("language", "", "Editor language id (default: derived from the extension)")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
