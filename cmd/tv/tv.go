package main

import (
	"context"
	"fmt"
	"os"

	"github.com/television/television"
	"github.com/television/television/internal/util"
)

func main() {
	os.Exit(_main())
}

func _main() int {
	tv := television.New()
	err := tv.Run(context.Background())
	if err == nil {
		return television.ExitOK
	}

	if util.IsIgnorableError(err) {
		return television.ExitOK
	}
	if status, ok := util.GetExitStatus(err); ok {
		if status != television.ExitOK && status != television.ExitInterrupt {
			fmt.Fprintf(os.Stderr, "tv: %s\n", err)
		}
		return status
	}

	fmt.Fprintf(os.Stderr, "tv: %s\n", err)
	return television.ExitFatal
}
