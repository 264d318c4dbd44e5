package pulsedemod

/*------------------------------------------------------------------
 *
 * Purpose:	Tunable parameters for the decoder.
 *
 * Description:	Everything that used to be a module constant lives
 *		here and is handed to the Decoder explicitly.  A YAML
 *		file can override any subset; fields it leaves out
 *		keep their defaults.
 *
 *		Example:
 *
 *			calibration:
 *			  first: 100
 *			  last: 1200
 *			  step: 50
 *			  min_agreement: 4
 *			classifier:
 *			  tolerance_percent: 10
 *			pixel:
 *			  probe_column: 1
 *			  noise_floor: 30
 *			  reference_colors:
 *			    - [244, 172, 172]
 *			    - [245, 161, 161]
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type ClassifierConfig struct {
	TolerancePercent int `yaml:"tolerance_percent"`
}

type Config struct {
	// Divisor skips calibration when non-zero.
	Divisor     int              `yaml:"divisor"`
	Calibration SweepConfig      `yaml:"calibration"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Pixel       PixelConfig      `yaml:"pixel"`
}

func DefaultConfig() Config {
	return Config{
		Calibration: DefaultSweep(),
		Classifier:  ClassifierConfig{TolerancePercent: DefaultTolerancePercent},
		Pixel:       DefaultPixel(),
	}
}

func (c Config) Validate() error {
	if c.Divisor < 0 {
		return fmt.Errorf("divisor %d: %w", c.Divisor, ErrInvalidParameter)
	}
	if err := c.Calibration.Validate(); err != nil {
		return err
	}
	if c.Classifier.TolerancePercent < 0 {
		return fmt.Errorf("classifier tolerance_percent %d: %w", c.Classifier.TolerancePercent, ErrInvalidParameter)
	}
	if c.Pixel.ProbeColumn < 0 {
		return fmt.Errorf("pixel probe_column %d: %w", c.Pixel.ProbeColumn, ErrInvalidParameter)
	}
	if len(c.Pixel.ReferenceColors) == 0 {
		return fmt.Errorf("pixel reference_colors is empty: %w", ErrInvalidParameter)
	}
	return nil
}

// ParseConfig reads YAML over the defaults.  Unknown keys are an error.
func ParseConfig(r io.Reader) (Config, error) {
	var cfg = DefaultConfig()

	var dec = yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg, perr = ParseConfig(bytes.NewReader(data))
	if perr != nil {
		return Config{}, fmt.Errorf("%s: %w", path, perr)
	}
	return cfg, nil
}
