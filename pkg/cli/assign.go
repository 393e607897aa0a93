package cli

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/warrant/pkg/cli/config"
	"github.com/secmon-lab/warrant/pkg/domain/model"
	"github.com/secmon-lab/warrant/pkg/usecase"
	"github.com/secmon-lab/warrant/pkg/utils/apperr"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// paramsFile is the YAML shape accepted by --params-file
type paramsFile struct {
	UserID     string `yaml:"userId"`
	GroupID    string `yaml:"groupId"`
	OktaDomain string `yaml:"oktaDomain"`
}

func cmdAssign() *cli.Command {
	var (
		oktaCfg  config.Okta
		slackCfg config.Slack

		userID  string
		groupID string
		file    string
	)

	flags := joinFlags(
		oktaCfg.Flags(),
		slackCfg.Flags(),
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "user-id",
				Usage:       "Okta user ID to assign",
				Destination: &userID,
			},
			&cli.StringFlag{
				Name:        "group-id",
				Usage:       "Okta group ID to assign the user to",
				Destination: &groupID,
			},
			&cli.StringFlag{
				Name:        "params-file",
				Usage:       "YAML file with userId/groupId/oktaDomain",
				Destination: &file,
			},
		},
	)

	return &cli.Command{
		Name:  "assign",
		Usage: "Assign a user to a group directly (one-shot invoke)",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			params := model.Params{}
			if userID != "" {
				params["userId"] = userID
			}
			if groupID != "" {
				params["groupId"] = groupID
			}
			if oktaCfg.Domain != "" {
				params["oktaDomain"] = oktaCfg.Domain
			}

			if file != "" {
				if err := loadParamsFile(file, params); err != nil {
					return err
				}
			}

			execCtx := &model.ExecutionContext{
				Secrets: map[string]string{},
				Env:     envMap(),
			}
			if oktaCfg.HasToken() {
				execCtx.Secrets[model.SecretOktaAPIToken] = oktaCfg.APIToken
			}

			hooks := usecase.NewHooks(oktaCfg.Configure(), nil, slackCfg.ConfigureOptional(logger))

			result, err := hooks.Invoke(ctx, params, execCtx)
			if err != nil {
				apperr.Handle(ctx, err)
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}

// loadParamsFile merges YAML parameters into params. Explicit flags win over
// file values.
func loadParamsFile(path string, params model.Params) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return goerr.Wrap(err, "failed to read params file", goerr.V("path", path))
	}

	var pf paramsFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return goerr.Wrap(err, "failed to parse params file", goerr.V("path", path))
	}

	if _, ok := params["userId"]; !ok && pf.UserID != "" {
		params["userId"] = pf.UserID
	}
	if _, ok := params["groupId"]; !ok && pf.GroupID != "" {
		params["groupId"] = pf.GroupID
	}
	if _, ok := params["oktaDomain"]; !ok && pf.OktaDomain != "" {
		params["oktaDomain"] = pf.OktaDomain
	}
	return nil
}

func envMap() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
