// Command autopublish uploads prepared Markdown articles into the blog
// content repository. It reads its backend configuration from BLOG_*
// environment variables and publishes either a whole directory or a single
// file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	blog "github.com/Allenwdk/OxygenBlog"
	publishcmd "github.com/Allenwdk/OxygenBlog/internal/commands/publish"
	"github.com/Allenwdk/OxygenBlog/internal/publisher"
)

var buildModule = blog.New

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("autopublish: %v", err)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("autopublish", flag.ExitOnError)
	dir := fs.String("dir", "", "Directory of prepared Markdown files to upload (defaults to the configured batch source)")
	file := fs.String("file", "", "Single Markdown file to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := blog.ConfigFromEnv()
	module, err := buildModule(cfg)
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}
	defer module.Close()

	ctx := context.Background()

	var report *publisher.Report
	handlers := module.Commands(blog.CommandOptions{
		ReportSink: func(r publisher.Report) { report = &r },
	})

	switch {
	case *file != "":
		err = handlers.PublishFile.Execute(ctx, publishcmd.PublishFileCommand{File: *file})
	case *dir != "":
		err = handlers.PublishDirectory.Execute(ctx, publishcmd.PublishDirectoryCommand{Directory: *dir})
	default:
		err = handlers.PublishDirectory.Execute(ctx, publishcmd.PublishDirectoryCommand{Directory: cfg.Batch.SourceDir})
	}
	if err != nil {
		return err
	}
	if report == nil {
		return fmt.Errorf("no upload report produced")
	}

	printReport(out, report)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, report.Total)
	}
	return nil
}

func printReport(out io.Writer, report *publisher.Report) {
	for _, result := range report.Results {
		if result.Ok() {
			verb := "published"
			if result.Updated {
				verb = "updated"
			}
			fmt.Fprintf(out, "%s %s -> %s\n", verb, result.File, result.Path)
			continue
		}
		fmt.Fprintf(out, "failed %s: %s\n", result.File, result.Error)
	}
	fmt.Fprintf(out, "done: %d succeeded, %d failed (%d total)\n", report.Succeeded, report.Failed, report.Total)
}
