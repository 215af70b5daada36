package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/metraction/ncconf/internal/utils"
	"github.com/metraction/ncconf/pkg/literal"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// lists are forced to objects so every array becomes an ordered map
const phpDump = `$CONFIG = []; include $argv[1]; echo json_encode($CONFIG, JSON_FORCE_OBJECT | JSON_PRESERVE_ZERO_FRACTION | JSON_UNESCAPED_SLASHES);`

// PhpEvaluator runs the php binary on a config file and decodes its json dump
type PhpEvaluator struct {
	logger *zerolog.Logger
	Binary string // php executable, looked up in $PATH when empty
}

func NewPhpEvaluator(logger *zerolog.Logger) *PhpEvaluator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &PhpEvaluator{logger: logger}
}

func (rx *PhpEvaluator) Evaluate(ctx context.Context, path string) (*literal.Map, error) {
	binary := rx.Binary
	if binary == "" {
		var err error
		if binary, err = utils.OsWhich("php"); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPhp, err)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-r", phpDump, "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	elapsed := utils.ElapsedFunc()
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w: %s", ErrPhp, path, err, strings.TrimSpace(stderr.String()))
	}
	rx.logger.Debug().Str("file", path).Str("elapsed", utils.HumanDeltaMilisec(elapsed())).Msg("php evaluated")

	return DecodeJSON(stdout.Bytes())
}

// DecodeJSON turns a json object into a literal tree, keeping the key order.
// Values carry no source position.
func DecodeJSON(data []byte) (*literal.Map, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json output", ErrPhp)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: $CONFIG is not an array", ErrPhp)
	}
	return decodeValue(root).Map, nil
}

func decodeValue(result gjson.Result) literal.Value {
	switch result.Type {
	case gjson.Null:
		return literal.Null()
	case gjson.False:
		return literal.Bool(false)
	case gjson.True:
		return literal.Bool(true)
	case gjson.String:
		return literal.String(result.Str)
	case gjson.Number:
		if strings.ContainsAny(result.Raw, ".eE") {
			return literal.Float(result.Num)
		}
		i, err := strconv.ParseInt(result.Raw, 10, 64)
		if err != nil {
			return literal.Float(result.Num)
		}
		return literal.Int(i)
	}

	m := literal.NewMap()
	result.ForEach(func(key, value gjson.Result) bool {
		if result.IsObject() {
			m.Set(literal.StringKey(key.Str), decodeValue(value))
		} else {
			m.Append(decodeValue(value))
		}
		return true
	})
	return literal.MapOf(m)
}
