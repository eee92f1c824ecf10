// Command whisper-gateway serves an OpenAI-compatible audio API in front
// of a preferred and a backup whisper backend.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
