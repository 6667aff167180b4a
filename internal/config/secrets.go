package config

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/brainrot-studio/internal/chat"
	"github.com/fpang/brainrot-studio/internal/imagegen"
)

// ParameterAPI is the subset of the SSM client used to resolve secrets.
type ParameterAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// secret is one credential: its config key, its SSM parameter name under
// aws.ssm_prefix, and whether the current configuration needs it.
type secret struct {
	key      string
	param    string
	value    *string
	required bool
}

func (c *Config) secrets() []secret {
	var needOpenRouter, needGemini bool
	for _, m := range append(append([]string(nil), c.Roster...), c.SelectionModel) {
		switch {
		case m == "":
		case chat.IsGemini(m):
			needGemini = true
		default:
			needOpenRouter = true
		}
	}
	if c.Image.Provider == imagegen.ProviderImagen {
		needGemini = true
	}

	return []secret{
		{key: "openrouter.api_key", param: "openrouter-api-key", value: &c.OpenRouter.APIKey, required: needOpenRouter},
		{key: "gemini.api_key", param: "gemini-api-key", value: &c.Gemini.APIKey, required: needGemini},
		{key: "xai.api_key", param: "xai-api-key", value: &c.XAI.APIKey, required: c.Image.Provider == imagegen.ProviderXAI},
		{key: "elevenlabs.api_key", param: "elevenlabs-api-key", value: &c.ElevenLabs.APIKey, required: true},
	}
}

// ResolveSecrets fills required credentials that are still empty from SSM
// Parameter Store (<aws.ssm_prefix>/<name>, decrypted). It does nothing
// when no prefix is configured. A parameter that does not exist is left
// for Validate to report.
func (c *Config) ResolveSecrets(ctx context.Context, api ParameterAPI) error {
	if c.AWS.SSMPrefix == "" || api == nil {
		return nil
	}
	for _, s := range c.secrets() {
		if !s.required || *s.value != "" {
			continue
		}
		name := path.Join(c.AWS.SSMPrefix, s.param)
		start := time.Now()
		out, err := api.GetParameter(ctx, &ssm.GetParameterInput{
			Name:           aws.String(name),
			WithDecryption: aws.Bool(true),
		})
		if err != nil {
			var notFound *ssmtypes.ParameterNotFound
			if errors.As(err, &notFound) {
				log.Warn().Str("param", name).Str("key", s.key).Msg("Secret not found in SSM")
				continue
			}
			return fmt.Errorf("read %s from SSM: %w", name, err)
		}
		if out.Parameter != nil && out.Parameter.Value != nil {
			*s.value = *out.Parameter.Value
		}
		log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Secret loaded from SSM")
	}
	return nil
}
