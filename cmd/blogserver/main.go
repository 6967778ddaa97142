// Command blogserver serves the blog publishing JSON API.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	blog "github.com/Allenwdk/OxygenBlog"
)

var buildModule = blog.New

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("blogserver: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("blogserver", flag.ExitOnError)
	addr := fs.String("addr", "", "Listen address (overrides BLOG_SERVER_ADDR)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := blog.ConfigFromEnv()
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	module, err := buildModule(cfg)
	if err != nil {
		return fmt.Errorf("build module: %w", err)
	}
	defer module.Close()

	log.Printf("listening on %s", cfg.Server.Addr)
	return http.ListenAndServe(cfg.Server.Addr, module.Handler())
}
