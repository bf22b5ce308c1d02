package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/curriculum-backend/internal/app"
	"github.com/yungbote/curriculum-backend/internal/seed"
)

func main() {
	var file string
	flag.StringVar(&file, "file", "fixtures/catalog.yaml", "YAML catalog fixture to load")
	flag.Parse()

	f, err := os.Open(file)
	if err != nil {
		fmt.Printf("open fixture: %v\n", err)
		os.Exit(1)
	}
	fx, err := seed.Load(f)
	_ = f.Close()
	if err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}

	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	sum, err := seed.New(application.Log, application.Services.Content).Apply(context.Background(), fx)
	if err != nil {
		fmt.Printf("seed failed: %v\n", err)
		application.Close()
		os.Exit(1)
	}
	fmt.Printf("done; topics=%d programs=%d terms=%d lessons=%d published=%d\n",
		sum.Topics, sum.Programs, sum.Terms, sum.Lessons, sum.Published)
}
