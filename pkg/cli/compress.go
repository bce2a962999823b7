package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gdefombelle/pytune-helpers-images/internal/config"
	"github.com/gdefombelle/pytune-helpers-images/internal/imageproc"
	"github.com/gdefombelle/pytune-helpers-images/internal/logger"
)

func newCompressCommand(cfg *config.Config) *cobra.Command {
	var (
		output  string
		maxSide int
		quality int
	)

	cmd := &cobra.Command{
		Use:   "compress <image-file>",
		Short: "Resize and recompress an image, printing its metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			opts := imageproc.Options{
				MaxSide: cfg.Image.MaxSide,
				Quality: cfg.Image.Quality,
			}
			if cmd.Flags().Changed("max-side") {
				opts.MaxSide = maxSide
			}
			if cmd.Flags().Changed("quality") {
				opts.Quality = quality
			}

			compressed, meta, err := imageproc.CompressAndExtract(data, opts)
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_compressed.jpg"
			}
			if err := os.WriteFile(output, compressed, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			logger.Info("Wrote compressed image to %s (%d -> %d bytes)", output, len(data), len(compressed))

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: <input>_compressed.jpg)")
	cmd.Flags().IntVar(&maxSide, "max-side", 1024, "Longest side of the compressed image in pixels")
	cmd.Flags().IntVar(&quality, "quality", 80, "JPEG quality (1-100)")

	return cmd
}
