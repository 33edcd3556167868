package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"

	"github.com/neuvecom/hebodan/common"
)

func main() {
	theme := flag.String("theme", "", "Episode theme to generate a script for")
	scriptPath := flag.String("script", "", "Use an existing script.json instead of generating one")
	thumbnail := flag.Bool("thumbnail", false, "Generate only the thumbnail")
	draft := flag.Bool("draft", false, "Render videos but skip upload and post")
	upload := flag.Bool("upload", false, "Upload the landscape video to YouTube")
	post := flag.Bool("post", false, "Announce the video on X")
	serverMode := flag.Bool("server", false, "Run as HTTP server")
	port := flag.String("port", ":8080", "Server port (only with --server)")
	workers := flag.Int("workers", runtime.NumCPU(), "Number of worker goroutines (only with --server)")
	flag.Parse()

	cfg, err := common.LoadConfig(".")
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}
	if _, err := os.Stat(cfg.FontPath); err != nil {
		log.Fatalf("Font not found at %s; subtitles cannot be rendered", cfg.FontPath)
	}

	if *serverMode {
		StartServer(cfg, *port, *workers)
		return
	}

	if *theme == "" && *scriptPath == "" {
		log.Fatal("Usage: hebodan --theme=<topic> [--draft|--upload --post]\n" +
			"       hebodan --script=script.json [--thumbnail]\n" +
			"       hebodan --server [--port=:8080] [--workers=4]")
	}

	pipeline, err := NewPipeline(cfg)
	if err != nil {
		log.Fatalf("Pipeline init failed: %v", err)
	}

	opts := PipelineOptions{
		Theme:         *theme,
		ScriptPath:    *scriptPath,
		ThumbnailOnly: *thumbnail,
		Draft:         *draft,
		Upload:        *upload,
		Post:          *post,
	}
	if err := pipeline.Run(context.Background(), opts); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}
	log.Println("Pipeline completed successfully!")
}
