// Command gesturesim replays a scripted touch interaction against a viewer
// session and prints the resulting transforms.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"os"

	"gopkg.in/yaml.v3"

	"rent-preview/internal/config"
	previmage "rent-preview/internal/image"
	"rent-preview/internal/logging"
	"rent-preview/internal/render"
	"rent-preview/internal/viewer"
)

func main() {
	scriptPath := flag.String("script", "", "Path to the YAML interaction script")
	configPath := flag.String("config", "", "TOML configuration file (defaults when empty)")
	imagePath := flag.String("image", "", "Image to render the final transform with")
	outPath := flag.String("out", "", "PNG file for the rendered frame (requires -image)")
	verbose := flag.Bool("v", false, "Log recognized gestures")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Println("Usage: gesturesim -script <path> [-config cfg.toml] [-image img -out frame.png] [-v]")
		os.Exit(1)
	}
	logging.Install(os.Stderr, *verbose)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	f, err := os.Open(*scriptPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open script: %v\n", err)
		os.Exit(1)
	}
	script, err := ParseScript(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	session, snaps, err := Replay(script, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Replay failed: %v\n", err)
		os.Exit(1)
	}
	defer session.Close()

	out, err := yaml.Marshal(snaps)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode snapshots: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(out)

	if *imagePath == "" || *outPath == "" {
		return
	}
	if err := writeFrame(*imagePath, *outPath, script, session.Engine()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *outPath)
}

// writeFrame renders the image at imagePath under the engine's current
// transform and saves it as a PNG.
func writeFrame(imagePath, outPath string, script *Script, engine *viewer.Engine) error {
	img, err := previmage.NewLoader(0).Load(context.Background(), imagePath)
	if err != nil {
		return err
	}
	frame := render.NewFrame(int(script.Viewport.Width), int(script.Viewport.Height),
		img.Image, engine.Matrix(), color.Black, render.Smooth)

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}
