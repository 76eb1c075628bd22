package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-semver/semver"
	"github.com/hashicorp/go-multierror"
)

// ParseVersion parses a libFLAC version string such as "1.4.3". Two-part
// versions are accepted and read as patch zero.
func ParseVersion(v string) (*semver.Version, error) {
	v = strings.TrimSpace(v)
	if strings.Count(v, ".") == 1 {
		v += ".0"
	}
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("codec: parse version %q: %w", v, err)
	}
	return sv, nil
}

// SelfTest probes exports with known behavior to catch libraries whose
// exports do not match the declared signatures. The version string must
// parse and be at least minVersion, when minVersion is not empty. Decoders
// and encoders must be created in their uninitialized state and their state
// names must match the library's own state string tables. All failing
// probes are reported.
func (c *Codec) SelfTest(minVersion string) error {
	var result error

	if err := c.checkVersion(minVersion); err != nil {
		result = multierror.Append(result, err)
	}
	if vendor, err := c.Vendor(); err != nil {
		result = multierror.Append(result, err)
	} else if vendor == "" {
		result = multierror.Append(result, errors.New("codec: empty vendor string"))
	}
	if err := c.checkDecoder(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.checkEncoder(); err != nil {
		result = multierror.Append(result, err)
	}
	return result
}

func (c *Codec) checkVersion(minVersion string) error {
	v, err := c.Version()
	if err != nil {
		return err
	}
	got, err := ParseVersion(v)
	if err != nil {
		return err
	}
	if minVersion == "" {
		return nil
	}
	want, err := ParseVersion(minVersion)
	if err != nil {
		return err
	}
	if got.LessThan(*want) {
		return fmt.Errorf("codec: version %s is older than %s", got, want)
	}
	return nil
}

func (c *Codec) checkDecoder() error {
	d, err := c.NewDecoder()
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := d.State()
	if err != nil {
		return err
	}
	if state != DecoderUninitialized {
		return fmt.Errorf("codec: new decoder in state %v, want %v", state, DecoderUninitialized)
	}
	name, err := c.DecoderStateString(state)
	if err != nil {
		return err
	}
	if name != state.String() {
		return fmt.Errorf("codec: decoder state %d is named %q, want %q", state, name, state.String())
	}
	return nil
}

func (c *Codec) checkEncoder() error {
	e, err := c.NewEncoder()
	if err != nil {
		return err
	}
	defer e.Close()

	state, err := e.State()
	if err != nil {
		return err
	}
	if state != EncoderUninitialized {
		return fmt.Errorf("codec: new encoder in state %v, want %v", state, EncoderUninitialized)
	}
	name, err := c.EncoderStateString(state)
	if err != nil {
		return err
	}
	if name != state.String() {
		return fmt.Errorf("codec: encoder state %d is named %q, want %q", state, name, state.String())
	}
	return nil
}
