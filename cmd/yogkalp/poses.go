package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ayusman/yogkalp/internal/pose"
	"github.com/ayusman/yogkalp/internal/posefile"
	"github.com/ayusman/yogkalp/internal/store"
)

func listPoses(c *cli.Context) error {
	_, logger, b, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer b.close()

	library := pose.NewLibrary(b.poses, logger)
	if err := library.Load(c.Context); err != nil {
		return err
	}

	out := c.App.Writer
	if library.Len() == 0 {
		fmt.Fprintln(out, "no saved poses")
		return nil
	}

	for _, name := range library.Names() {
		features, _ := library.Get(name)
		fmt.Fprintf(out, "%-24s %2d features  %s\n", name, len(features), strings.Join(features.Names(), ","))
	}
	return nil
}

// upserter is implemented by stores that can write a single pose.
type upserter interface {
	Upsert(ctx context.Context, name string, features pose.Vector) (*store.Pose, error)
}

func importPoses(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("import needs exactly one pose file")
	}

	_, logger, b, err := setup(c)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer b.close()

	source, err := posefile.New(c.Args().First(), logger).Load(c.Context)
	if err != nil {
		return fmt.Errorf("read pose file: %w", err)
	}

	library := pose.NewLibrary(b.poses, logger)
	if up, ok := b.poses.(upserter); ok {
		// Write only the imported poses; the rest of the store is untouched.
		names := make([]string, 0, len(source))
		for name := range source {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := up.Upsert(c.Context, name, source[name]); err != nil {
				return fmt.Errorf("import pose %q: %w", name, err)
			}
		}
		if err := library.Load(c.Context); err != nil {
			return err
		}
	} else {
		if err := library.Load(c.Context); err != nil {
			return err
		}
		for name, features := range source {
			library.Add(name, features)
		}
		if err := library.Persist(c.Context); err != nil {
			return err
		}
	}

	fmt.Fprintf(c.App.Writer, "imported %d poses, %d in store\n", len(source), library.Len())
	return nil
}
