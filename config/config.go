package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/cbor-serializer/errors"
	"github.com/wippyai/cbor-serializer/serializer"
)

// Load reads options from a YAML, TOML or JSONC file.
func Load(path string) (serializer.Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return serializer.Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "read "+path)
	}
	return Parse(filepath.Ext(path), data)
}

// Parse decodes options from data in the format named by ext.
func Parse(ext string, data []byte) (serializer.Options, error) {
	var (
		m   map[string]any
		err error
	)
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		var tree *toml.Tree
		if tree, err = toml.LoadBytes(data); err == nil {
			m = tree.ToMap()
		}
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), &m)
	default:
		return serializer.Options{}, errors.New(errors.PhaseConfig, errors.KindUnsupported).
			Detail("unsupported config format %q", ext).
			Build()
	}
	if err != nil {
		return serializer.Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "parse "+ext+" config")
	}
	return FromMap(m)
}

// FromMap decodes a loosely typed property bag over the default options.
func FromMap(m map[string]any) (serializer.Options, error) {
	opts := serializer.DefaultOptions()
	if err := Apply(&opts, m); err != nil {
		return serializer.Options{}, err
	}
	return opts, nil
}

// Apply decodes m over opts. Keys missing from m leave opts untouched.
func Apply(opts *serializer.Options, m map[string]any) error {
	if len(m) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			joinListHook,
			mapstructure.TextUnmarshallerHookFunc(),
		),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           opts,
	})
	if err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "build decoder")
	}
	if err := dec.Decode(m); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "decode options")
	}
	return nil
}

// joinListHook accepts validation flags written as a list.
func joinListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Slice || to != reflect.TypeFor[serializer.ValidationFlags]() {
		return data, nil
	}
	items, ok := data.([]any)
	if !ok {
		return data, nil
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return data, nil
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "|"), nil
}

// env holds the CBORCONV_* overrides. Empty fields are not applied.
type env struct {
	Polymorphism     string `env:"CBORCONV_POLYMORPHISM"`
	Validation       string `env:"CBORCONV_VALIDATION"`
	KeepIdentity     string `env:"CBORCONV_KEEP_IDENTITY"`
	IgnoreStored     string `env:"CBORCONV_IGNORE_STORED"`
	AllowDefaultNull string `env:"CBORCONV_ALLOW_DEFAULT_NULL"`
	EnumAsString     string `env:"CBORCONV_ENUM_AS_STRING"`
	GenericObjects   string `env:"CBORCONV_GENERIC_OBJECTS"`
}

func (e env) toMap() map[string]any {
	m := make(map[string]any)
	set := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	set("polymorphism", e.Polymorphism)
	set("validation", e.Validation)
	set("keep_identity", e.KeepIdentity)
	set("ignore_stored", e.IgnoreStored)
	set("allow_default_null", e.AllowDefaultNull)
	set("enum_as_string", e.EnumAsString)
	set("generic_objects", e.GenericObjects)
	return m
}

// FromEnv applies CBORCONV_* environment variables over base.
func FromEnv(base serializer.Options) (serializer.Options, error) {
	var e env
	if err := envdecode.Decode(&e); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return serializer.Options{}, errors.Wrap(errors.PhaseConfig, errors.KindInvalidConfig, err, "read environment")
	}
	if err := Apply(&base, e.toMap()); err != nil {
		return serializer.Options{}, err
	}
	return base, nil
}
