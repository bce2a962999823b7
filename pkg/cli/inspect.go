package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gdefombelle/pytune-helpers-images/internal/config"
	"github.com/gdefombelle/pytune-helpers-images/pkg/exiftags"
	"github.com/gdefombelle/pytune-helpers-images/pkg/geocode"
	"github.com/gdefombelle/pytune-helpers-images/pkg/gps"
	"github.com/gdefombelle/pytune-helpers-images/pkg/imagebytes"
)

// inspectOutput is the JSON document printed by the inspect command.
type inspectOutput struct {
	File     string            `json:"file"`
	MimeType string            `json:"mime_type"`
	Exif     map[string]string `json:"exif"`
	Location *gps.Coordinate   `json:"location,omitempty"`
	City     string            `json:"city,omitempty"`
	Country  string            `json:"country,omitempty"`
}

func newInspectCommand(cfg *config.Config) *cobra.Command {
	var doGeocode bool

	cmd := &cobra.Command{
		Use:   "inspect <image-file>",
		Short: "Print EXIF tags and extracted GPS coordinates as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			mimeType, _ := imagebytes.Sniff(data)
			tags := exiftags.Read(data)

			out := inspectOutput{
				File:     args[0],
				MimeType: mimeType,
				Exif:     tags,
				Location: gps.ExtractFromTags(tags),
			}

			if doGeocode && out.Location != nil {
				geocoder := geocode.New(geocode.Config{
					ReverseURL: cfg.Geocode.ReverseURL,
					UserAgent:  cfg.Geocode.UserAgent,
					Timeout:    cfg.Geocode.Timeout,
				})
				if place, ok := geocoder.ReverseCoordinate(cmd.Context(), out.Location); ok {
					out.City = place.City
					out.Country = place.Country
				}
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}

	cmd.Flags().BoolVar(&doGeocode, "geocode", false, "Reverse geocode the extracted coordinates")

	return cmd
}
