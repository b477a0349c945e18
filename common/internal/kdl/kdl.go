package kdl

import (
	"os"

	"github.com/sblinch/kdl-go"
)

// Unmarshal decodes data over defaultCfg, so nodes missing from the
// document keep their default values.
func Unmarshal[T any](data []byte, defaultCfg T) (T, error) {
	var nilT T
	if err := kdl.Unmarshal(data, &defaultCfg); err != nil {
		return nilT, err
	}
	return defaultCfg, nil
}

func UnmarshalFile[T any](kdlPath string, defaultCfg T) (T, error) {
	var nilT T
	data, err := os.ReadFile(kdlPath)
	if err != nil {
		return nilT, err
	}
	return Unmarshal(data, defaultCfg)
}
