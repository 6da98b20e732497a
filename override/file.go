package override

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// LoadOverrideFile reads a flat "key" -> "version" map from a TOML, YAML or
// JSON file, chosen by extension. Keys containing ':' or '@' must be quoted
// in TOML:
//
//	"io.netty:*@org.acme:web" = "4.1.100.Final-redhat-1"
//	"org.slf4j:slf4j-api@*" = ""
func LoadOverrideFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "read override file"), "path", path)
	}

	out := make(map[string]string)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &out)
	case ".json":
		err = json.Unmarshal(data, &out)
	default:
		return nil, zerr.With(zerr.Wrap(ErrUnsupportedFormat, "load override file"), "path", path)
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "decode override file"), "path", path)
	}
	return out, nil
}
