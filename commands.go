package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mediaroll/internal/library"
	"mediaroll/internal/media"
	"mediaroll/internal/store"
)

type photosFlags struct {
	first     int
	after     string
	group     string
	assetType string
	mimeTypes []string
	fromTime  int64
	toTime    int64
	include   []string
}

func (f *photosFlags) register(flags *pflag.FlagSet) {
	flags.IntVarP(&f.first, "first", "n", 20, "number of assets to return")
	flags.StringVar(&f.after, "after", "", "end cursor of the previous page")
	flags.StringVarP(&f.group, "group", "g", "", "only assets in this album")
	flags.StringVarP(&f.assetType, "type", "t", string(media.AssetTypePhotos), "Photos, Videos or All")
	flags.StringSliceVar(&f.mimeTypes, "mime", nil, "only these mime types (repeatable or comma separated)")
	flags.Int64Var(&f.fromTime, "from", 0, "only assets taken after this epoch millisecond")
	flags.Int64Var(&f.toTime, "to", 0, "only assets taken at or before this epoch millisecond")
	flags.StringSliceVar(&f.include, "include", nil, "optional fields: filename, fileSize, fileExtension, location, imageSize, playableDuration, orientation, albums")
}

func (f *photosFlags) query() media.AssetQuery {
	return media.AssetQuery{
		First:     f.first,
		After:     f.after,
		GroupName: f.group,
		AssetType: media.AssetType(f.assetType),
		MimeTypes: f.mimeTypes,
		FromTime:  f.fromTime,
		ToTime:    f.toTime,
		Include:   media.NewIncludeSet(f.include...),
	}
}

func newPhotosCmd(a *app) *cobra.Command {
	var f photosFlags
	cmd := &cobra.Command{
		Use:   "photos",
		Short: "Print one page of assets, newest first, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			maxPage := a.cfg.Query.MaxPageSize
			if !cmd.Flags().Changed("first") {
				f.first = min(f.first, maxPage)
			} else if f.first > maxPage {
				return fmt.Errorf("--first must be at most %d", maxPage)
			}
			ds, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			conn, err := a.newService(ds).GetPhotos(cmd.Context(), f.query())
			if err != nil {
				return err
			}
			return a.printJSON(conn)
		},
	}
	f.register(cmd.Flags())
	return cmd
}

func newAlbumsCmd(a *app) *cobra.Command {
	var assetType string
	cmd := &cobra.Command{
		Use:   "albums",
		Short: "List albums with their asset counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			albums, err := a.newService(ds).Albums(cmd.Context(), media.AssetType(assetType))
			if err != nil {
				return err
			}
			return a.printJSON(albums)
		},
	}
	cmd.Flags().StringVarP(&assetType, "type", "t", string(media.AssetTypeAll), "Photos, Videos or All")
	return cmd
}

func newSaveCmd(a *app) *cobra.Command {
	var opts struct {
		album string
		kind  string
	}
	cmd := &cobra.Command{
		Use:   "save FILE",
		Short: "Copy a file into the library and register it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			uri, err := a.newLibrary(ds).Save(cmd.Context(), args[0], library.SaveOptions{
				Album: opts.album,
				Type:  library.SaveType(opts.kind),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, uri)
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.album, "album", "a", "", "save into this album instead of Pictures or Movies")
	cmd.Flags().StringVarP(&opts.kind, "type", "t", string(library.SaveAuto), "auto, photo or video")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete URI...",
		Short: "Remove assets from disk and from the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			n, err := a.newLibrary(ds).Delete(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Deleted %s assets.\n", commatize(n))
			return nil
		},
	}
}

func newPruneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete index entries whose file no longer exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ds, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer ds.Close()

			removed, err := ds.RemoveStaleEntries(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Pruner: Removed %s stale files.\n", commatize(removed))
			return nil
		},
	}
}

func newMirrorCmd(a *app) *cobra.Command {
	var target string
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy the whole index into the other backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if target == "" {
				target = store.BackendBleve
				if a.cfg.Store.Backend == store.BackendBleve {
					target = store.BackendSQLite
				}
			}
			if target == a.cfg.Store.Backend {
				return fmt.Errorf("mirror target %q is the configured backend", target)
			}

			src, err := store.Open(a.cfg.Store.Backend, a.cfg.Store.Database)
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := store.Open(target, a.cfg.Store.Database)
			if err != nil {
				return err
			}
			defer dst.Close()

			n, err := store.Mirror(cmd.Context(), dst, src)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Mirror: Copied %s assets into %s.\n", commatize(n), target)
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "to", "", "target backend (default: the one not configured)")
	return cmd
}
