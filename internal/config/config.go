package config

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	FrameURL   string `env:"FRAME_URL,required"`
	RPCURL     string `env:"RPC_URL,default=http://localhost:8545"`
	RPCWSURL   string `env:"RPC_WS_URL,default=ws://localhost:8545"`
	Token      string `env:"TOKEN"`
	ChainID    string `env:"CHAIN_ID"`
	SentryURL  string `env:"SENTRY_URL"`
	Production bool   `env:"PRODUCTION,default=false"`
	ChunkLimit int    `env:"CHUNK_LIMIT,default=1000000"`
}

func New(ctx context.Context, envpath string) (*Config, error) {
	if envpath != "" {
		log.Default().Println("loading env from file: ", envpath)
		err := godotenv.Load(envpath)
		if err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := envconfig.Process(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
