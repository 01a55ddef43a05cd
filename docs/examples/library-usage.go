//go:build ignore

// Example of using fsplan as a library: build operations in memory, run
// them transactionally, and inspect the result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fsplan/fsplan/pkg/fsplan"
	"github.com/fsplan/fsplan/pkg/fsplan/execution"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
	"github.com/fsplan/fsplan/pkg/fsplan/operations"
)

func main() {
	fsys := filesystem.NewOSFileSystem(".")

	result := fsplan.Run(context.Background(), fsys,
		execution.Options{Transactional: true, VerifyChecksums: true},
		operations.NewCreateDirectory("out", operations.CreateDirectoryOptions{}),
		operations.NewCreateFile("out/hello.txt", []byte("hello\n"), operations.CreateFileOptions{}),
		operations.NewSymlink("hello.txt", "out/latest", operations.SymlinkOptions{}),
	)

	for _, line := range result.Log {
		fmt.Println(line)
	}
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %v\n", e)
		}
		os.Exit(1)
	}
	fmt.Printf("executed %d operations in %v\n", result.ExecutedCount, result.Duration)
}
