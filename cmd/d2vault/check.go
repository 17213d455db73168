package main

import (
	"context"
	"fmt"
	"path/filepath"
)

// check decodes every save and runs lint_character on it. A decode error,
// a script error or any lint message fails the file.
func (a *app) check(ctx context.Context, args []string) error {
	eng, err := a.scripts()
	if err != nil {
		return err
	}
	results, err := a.decodeAll(ctx, args)
	if err != nil && results == nil {
		return err
	}

	a.out.printBanner("check")
	failed := 0
	for _, r := range results {
		name := filepath.Base(r.Path)
		if r.Err != nil {
			failed++
			a.out.printFail(r.Err.Error())
			continue
		}
		msgs, lerr := eng.Lint(r.Save)
		if lerr != nil {
			failed++
			a.out.printFail(fmt.Sprintf("%s: %v", name, lerr))
			continue
		}
		if len(msgs) == 0 {
			a.out.printOK(fmt.Sprintf("%s (%s)", name, r.Save.DisplayName()))
			continue
		}
		failed++
		a.out.printFail(fmt.Sprintf("%s (%s)", name, r.Save.DisplayName()))
		for _, m := range msgs {
			a.out.printLine("%s", m)
		}
	}

	fmt.Fprintln(a.out.w)
	a.out.printStat("Checked", len(results))
	a.out.printStat("Failed", failed)
	if err != nil {
		return err
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}
