package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gdefombelle/pytune-helpers-images/internal/config"
	"github.com/gdefombelle/pytune-helpers-images/internal/storage"
	"github.com/gdefombelle/pytune-helpers-images/pkg/geocode"
	"github.com/gdefombelle/pytune-helpers-images/pkg/photometa"
)

func newLocateCommand(cfg *config.Config) *cobra.Command {
	var (
		endpoint       string
		accessKey      string
		secretKey      string
		region         string
		useSSL         bool
		defaultCity    string
		defaultCountry string
	)

	cmd := &cobra.Command{
		Use:   "locate <object-url>",
		Short: "Resolve a stored photo to a city and country",
		Long:  `Downloads the image behind an object storage URL, extracts its EXIF GPS coordinates and reverse geocodes them into a city and country.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("endpoint") {
				cfg.Storage.Endpoint = endpoint
			}
			if cmd.Flags().Changed("access-key") {
				cfg.Storage.AccessKey = accessKey
			}
			if cmd.Flags().Changed("secret-key") {
				cfg.Storage.SecretKey = secretKey
			}
			if cmd.Flags().Changed("region") {
				cfg.Storage.Region = region
			}
			if cmd.Flags().Changed("use-ssl") {
				cfg.Storage.UseSSL = useSSL
			}

			store, err := storage.New(storage.Config{
				Endpoint:  cfg.Storage.Endpoint,
				Region:    cfg.Storage.Region,
				AccessKey: cfg.Storage.AccessKey,
				SecretKey: cfg.Storage.SecretKey,
				UseSSL:    cfg.Storage.UseSSL,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize storage client: %w", err)
			}

			geocoder := geocode.New(geocode.Config{
				ReverseURL: cfg.Geocode.ReverseURL,
				UserAgent:  cfg.Geocode.UserAgent,
				Timeout:    cfg.Geocode.Timeout,
			})

			pipeline := photometa.New(store, geocoder)
			city, country := pipeline.CityCountry(cmd.Context(), args[0], defaultCity, defaultCountry)

			if city == "" && country == "" {
				fmt.Println("no location available")
				return nil
			}
			fmt.Printf("%s, %s\n", city, country)
			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Object storage endpoint URL")
	cmd.Flags().StringVar(&accessKey, "access-key", "", "Object storage access key")
	cmd.Flags().StringVar(&secretKey, "secret-key", "", "Object storage secret key")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "Object storage region")
	cmd.Flags().BoolVar(&useSSL, "use-ssl", true, "Use SSL for the storage connection")
	cmd.Flags().StringVar(&defaultCity, "default-city", "", "City to report when no location is found")
	cmd.Flags().StringVar(&defaultCountry, "default-country", "", "Country to report when no location is found")

	return cmd
}
