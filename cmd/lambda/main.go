package main

import (
	"fmt"

	"github.com/Brownie44l1/catdog-api/internal/config"
	"github.com/Brownie44l1/catdog-api/internal/handlers"
	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/Brownie44l1/catdog-api/internal/setup"

	"github.com/aws/aws-lambda-go/lambda"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %s", err))
	}

	log, err := setup.NewLogger(cfg.Debug)
	if err != nil {
		panic("Failed init logger")
	}

	// The model loads on the first invocation and stays cached while the
	// execution environment is warm.
	p := pipeline.New(
		pipeline.ModelLoader(cfg.Model.Path, cfg.Model.Options(), log),
		cfg.Labels.Labels(),
		log,
	)
	lambda.Start(handlers.NewHandler(p).Lambda)
}
