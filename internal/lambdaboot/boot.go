// Package lambdaboot holds the AWS client setup shared by the CLI and the
// scheduled Lambda. Clients are only created for the features the loaded
// configuration turns on.
package lambdaboot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/arena"
	"github.com/fpang/brainrot-studio/internal/config"
	"github.com/fpang/brainrot-studio/internal/logging"
)

// AWSClients holds the clients a run may need. Fields are nil when the
// matching feature is not configured.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
	S3     *s3.Client
	Dynamo *dynamodb.Client
}

// NeedsAWS reports whether cfg turns on any AWS-backed feature.
func NeedsAWS(cfg *config.Config) bool {
	return cfg.AWS.SSMPrefix != "" || cfg.AWS.S3Bucket != "" || cfg.AWS.DynamoTable != ""
}

// InitAWS loads the default AWS config and creates the clients cfg asks for.
func InitAWS(ctx context.Context, cfg *config.Config) (*AWSClients, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", awsCfg.Region).Msg("AWS config loaded")

	clients := &AWSClients{Config: awsCfg}
	if cfg.AWS.SSMPrefix != "" {
		clients.SSM = ssm.NewFromConfig(awsCfg)
	}
	if cfg.AWS.S3Bucket != "" {
		clients.S3 = s3.NewFromConfig(awsCfg)
	}
	if cfg.AWS.DynamoTable != "" {
		clients.Dynamo = dynamodb.NewFromConfig(awsCfg)
	}
	return clients, nil
}

// ResolveSecrets fetches missing credentials from SSM when a prefix is set.
func (c *AWSClients) ResolveSecrets(ctx context.Context, cfg *config.Config) error {
	if c == nil || c.SSM == nil {
		return nil
	}
	start := time.Now()
	if err := cfg.ResolveSecrets(ctx, c.SSM); err != nil {
		return err
	}
	log.Debug().Str("prefix", cfg.AWS.SSMPrefix).Dur("elapsed", time.Since(start)).Msg("Secrets resolved")
	return nil
}

// ArenaStore returns the DynamoDB arena store when a table is configured,
// otherwise the ratings file in the output directory.
func (c *AWSClients) ArenaStore(cfg *config.Config) arena.Store {
	if c != nil && c.Dynamo != nil {
		return arena.NewDynamoStore(c.Dynamo, cfg.AWS.DynamoTable)
	}
	if cfg.AWS.DynamoTable != "" {
		log.Warn().Str("table", cfg.AWS.DynamoTable).Msg("DynamoDB client unavailable, using ratings file")
	}
	return &arena.FileStore{Path: filepath.Join(cfg.OutputDir, arena.RatingsFile)}
}

// StartupLog is a convenience wrapper for the run logger.
func StartupLog(name string, initStart time.Time) *logging.RunLogger {
	return logging.NewRunLogger(name).InitDuration(time.Since(initStart))
}
