package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/warrant/pkg/domain/model"
)

func TestParams_String(t *testing.T) {
	params := model.Params{
		"userId": "00u1abcd",
		"count":  42,
		"flag":   true,
		"empty":  "",
	}

	v, ok := params.String("userId")
	gt.B(t, ok).True()
	gt.Equal(t, v, "00u1abcd")

	_, ok = params.String("missing")
	gt.B(t, ok).False()

	_, ok = params.String("count")
	gt.B(t, ok).False()

	_, ok = params.String("flag")
	gt.B(t, ok).False()

	_, ok = params.String("empty")
	gt.B(t, ok).False()
}

func TestExecutionContext_Param(t *testing.T) {
	execCtx := &model.ExecutionContext{
		Params: model.Params{"userId": "from-context"},
	}

	// params wins over context.params
	v, ok := execCtx.Param(model.Params{"userId": "from-params"}, "userId")
	gt.B(t, ok).True()
	gt.Equal(t, v, "from-params")

	// fall back to context.params
	v, ok = execCtx.Param(model.Params{}, "userId")
	gt.B(t, ok).True()
	gt.Equal(t, v, "from-context")

	_, ok = execCtx.Param(model.Params{}, "groupId")
	gt.B(t, ok).False()
}

func TestExecutionContext_Secret(t *testing.T) {
	execCtx := &model.ExecutionContext{
		Secrets: map[string]string{model.SecretOktaAPIToken: "token123"},
	}

	gt.Equal(t, execCtx.Secret(model.SecretOktaAPIToken), "token123")
	gt.Equal(t, execCtx.Secret("OTHER"), "")

	var nilCtx *model.ExecutionContext
	gt.Equal(t, nilCtx.Secret(model.SecretOktaAPIToken), "")
}
