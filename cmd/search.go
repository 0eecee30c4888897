package main

import (
	"github.com/spf13/cobra"

	"github.com/auphere/places-sync/internal/cache"
	"github.com/auphere/places-sync/internal/search"
)

var (
	searchLat     float64
	searchLng     float64
	searchRadiusM int
	searchType    string
	searchKeyword string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Ad-hoc nearby search against the Google Places API",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := newGoogleClient()
		if err != nil {
			return err
		}

		svc := search.New(source, cache.New(cfg.Cache.TTL()))
		res, err := svc.Nearby(cmd.Context(), search.Query{
			Lat:       searchLat,
			Lng:       searchLng,
			RadiusM:   searchRadiusM,
			PlaceType: searchType,
			Keyword:   searchKeyword,
		})
		if err != nil {
			return err
		}
		return printJSON(res)
	},
}

func init() {
	searchCmd.Flags().Float64Var(&searchLat, "lat", 0, "latitude of the search center")
	searchCmd.Flags().Float64Var(&searchLng, "lng", 0, "longitude of the search center")
	searchCmd.Flags().IntVar(&searchRadiusM, "radius-m", 0, "search radius in meters")
	searchCmd.Flags().StringVar(&searchType, "type", "", "place type filter")
	searchCmd.Flags().StringVar(&searchKeyword, "keyword", "", "keyword filter")
	searchCmd.MarkFlagRequired("lat")
	searchCmd.MarkFlagRequired("lng")
	rootCmd.AddCommand(searchCmd)
}
