package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/credibility/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/credibility/internal/domain"
)

type analyzeOptions struct {
	title       string
	url         string
	content     string
	contentFile string
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Score one article and print the result as JSON",
		Example: `  credibility analyze --title "Inflation eases" --url https://www.kompas.com/a --content-file article.txt
  cat article.txt | credibility analyze --title "Inflation eases" --url https://www.kompas.com/a`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := opts.readContent(cmd.InOrStdin())
			if err != nil {
				return err
			}

			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			log, err := cliLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			app, err := bootstrap.NewApp(cmd.Context(), cfg, log, Version)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Service.Analyze(cmd.Context(), domain.Article{
				Title:   opts.title,
				Content: content,
				URL:     opts.url,
			})
			if errors.Is(err, domain.ErrValidation) {
				return errors.New("title, content, and url are required")
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVar(&opts.title, "title", "", "article title")
	cmd.Flags().StringVar(&opts.url, "url", "", "article source URL")
	cmd.Flags().StringVar(&opts.content, "content", "", "article body")
	cmd.Flags().StringVar(&opts.contentFile, "content-file", "", `file holding the article body ("-" for stdin)`)
	return cmd
}

// readContent prefers --content, then --content-file, then stdin.
func (o *analyzeOptions) readContent(stdin io.Reader) (string, error) {
	if o.content != "" {
		return o.content, nil
	}

	var (
		data []byte
		err  error
	)
	switch o.contentFile {
	case "", "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(o.contentFile)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(data), nil
}
