package pysynrad

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// knownKeys enumerates the configuration tree's recognized paths
// (spec.md §6). Any key present in the loaded document that is not
// reachable through this tree is a configuration error (spec.md §9
// design note: "unknown keys are an error"). A leaf value of true marks a
// terminal scalar/array; a nested map marks a sub-tree.
var knownKeys = map[string]interface{}{
	"application": map[string]interface{}{
		"output": map[string]interface{}{
			"orbit_parameters":        sinkKeys,
			"twiss_parameters":        sinkKeys,
			"regions":                 sinkKeys,
			"radiated_number_photons": sinkKeys,
			"spectrum_lut":            sinkKeys,
			"events": map[string]interface{}{
				"enabled":  true,
				"filename": true,
			},
		},
	},
	"machine": map[string]interface{}{
		"lattice":        true,
		"beam_energy":    true,
		"beam_current":   true,
		"crossing_angle": true,
	},
	"generator": map[string]interface{}{
		"orbit": map[string]interface{}{
			"start":     true,
			"stop":      true,
			"step_size": true,
			"offset": map[string]interface{}{
				"position": true,
				"angle":    true,
			},
		},
		"twiss": map[string]interface{}{
			"alpha":          axisKeys,
			"beta":           axisKeys,
			"eta":            axisKeys,
			"eta_derivative": axisKeys,
			"emittance":      axisKeys,
			"delta_e":        true,
		},
		"photons": map[string]interface{}{
			"enabled":       true,
			"full_events":   true,
			"nth_step":      true,
			"time":          true,
			"energy_cutoff": true,
			"sigma": map[string]interface{}{
				"h": true, "v": true,
			},
			"steps": map[string]interface{}{
				"h": true, "v": true,
			},
			"region": map[string]interface{}{
				"enabled": true,
				"range":   true,
			},
			"target_zone": map[string]interface{}{
				"enabled":  true,
				"radius":   true,
				"boundary": true,
			},
			"spectrum": map[string]interface{}{
				"resolution":    true,
				"cutoff":        true,
				"seed":          true,
				"interpolation": true,
			},
		},
	},
}

var sinkKeys = map[string]interface{}{
	"enabled":  true,
	"nth_step": true,
	"fraction": true,
	"filename": true,
}

var axisKeys = map[string]interface{}{
	"horizontal": true,
	"vertical":   true,
}

// Load reads the JSON configuration at path, substituting any $var
// placeholders from templateJSON (a JSON object) before parsing — the Go
// equivalent of the reference implementation's
// `string.Template.safe_substitute` (spec.md §6 CLI contract).
func Load(path, templateJSON string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: reading %s: %w", path, err)
	}

	if templateJSON != "" {
		var vars map[string]string
		if err := json.Unmarshal([]byte(templateJSON), &vars); err != nil {
			return nil, fmt.Errorf("settings: parsing -template: %w", err)
		}
		expanded := os.Expand(string(raw), func(key string) string {
			v, ok := vars[key]
			if !ok {
				return "$" + key
			}
			return v
		})
		raw = []byte(expanded)
	}

	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("settings: parsing %s: %w", path, err)
	}

	if err := checkUnknownKeys("", v.AllSettings(), knownKeys); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}

	cfg := &Config{}
	cfg.Application.Output.OrbitParameters = readSink(v, "application.output.orbit_parameters")
	cfg.Application.Output.TwissParameters = readSink(v, "application.output.twiss_parameters")
	cfg.Application.Output.Regions = readSink(v, "application.output.regions")
	cfg.Application.Output.RadiatedNumberPhotons = readSink(v, "application.output.radiated_number_photons")
	cfg.Application.Output.SpectrumLUT = readSink(v, "application.output.spectrum_lut")
	cfg.Application.Output.Events = EventsSinkConfig{
		Enabled:  v.GetBool("application.output.events.enabled"),
		Filename: v.GetString("application.output.events.filename"),
	}

	cfg.Machine = MachineConfig{
		Lattice:       v.GetStringSlice("machine.lattice"),
		BeamEnergy:    v.GetFloat64("machine.beam_energy"),
		BeamCurrent:   v.GetFloat64("machine.beam_current"),
		CrossingAngle: v.GetFloat64("machine.crossing_angle"),
	}
	if len(cfg.Machine.Lattice) == 0 {
		return nil, fmt.Errorf("settings: machine.lattice must list at least one lattice file")
	}

	cfg.Generator.Orbit.Start = v.GetFloat64("generator.orbit.start")
	cfg.Generator.Orbit.Stop = v.GetFloat64("generator.orbit.stop")
	cfg.Generator.Orbit.StepSize = v.GetFloat64("generator.orbit.step_size")
	cfg.Generator.Orbit.Offset.Position = v.GetFloat64("generator.orbit.offset.position")
	cfg.Generator.Orbit.Offset.Angle = v.GetFloat64("generator.orbit.offset.angle")

	cfg.Generator.Twiss.Alpha = readAxis(v, "generator.twiss.alpha")
	cfg.Generator.Twiss.Beta = readAxis(v, "generator.twiss.beta")
	cfg.Generator.Twiss.Eta = readAxis(v, "generator.twiss.eta")
	cfg.Generator.Twiss.EtaDerivative = readAxis(v, "generator.twiss.eta_derivative")
	cfg.Generator.Twiss.Emittance = readAxis(v, "generator.twiss.emittance")
	cfg.Generator.Twiss.DeltaE = v.GetFloat64("generator.twiss.delta_e")

	p := &cfg.Generator.Photons
	p.Enabled = v.GetBool("generator.photons.enabled")
	p.FullEvents = v.GetBool("generator.photons.full_events")
	p.NthStep = v.GetInt("generator.photons.nth_step")
	p.Time = v.GetFloat64("generator.photons.time")
	p.EnergyCutoff = v.GetFloat64("generator.photons.energy_cutoff")
	p.Sigma.H = v.GetFloat64("generator.photons.sigma.h")
	p.Sigma.V = v.GetFloat64("generator.photons.sigma.v")
	p.Steps.H = v.GetInt("generator.photons.steps.h")
	p.Steps.V = v.GetInt("generator.photons.steps.v")
	p.Region.Enabled = v.GetBool("generator.photons.region.enabled")
	if rng := v.GetFloat64Slice("generator.photons.region.range"); len(rng) == 2 {
		p.Region.Range = [2]float64{rng[0], rng[1]}
	}
	p.TargetZone.Enabled = v.GetBool("generator.photons.target_zone.enabled")
	if r := v.GetFloat64Slice("generator.photons.target_zone.radius"); len(r) == 2 {
		p.TargetZone.Radius = [2]float64{r[0], r[1]}
	}
	if b := v.GetFloat64Slice("generator.photons.target_zone.boundary"); len(b) == 2 {
		p.TargetZone.Boundary = [2]float64{b[0], b[1]}
	}
	p.Spectrum.Resolution = v.GetInt("generator.photons.spectrum.resolution")
	p.Spectrum.Cutoff = v.GetFloat64("generator.photons.spectrum.cutoff")
	p.Spectrum.Seed = v.GetInt64("generator.photons.spectrum.seed")
	p.Spectrum.Interpolation = v.GetBool("generator.photons.spectrum.interpolation")

	return cfg, nil
}

func readSink(v *viper.Viper, prefix string) SinkConfig {
	return SinkConfig{
		Enabled:  v.GetBool(prefix + ".enabled"),
		NthStep:  v.GetInt(prefix + ".nth_step"),
		Fraction: v.GetFloat64(prefix + ".fraction"),
		Filename: v.GetString(prefix + ".filename"),
	}
}

func readAxis(v *viper.Viper, prefix string) axisPair {
	return axisPair{
		Horizontal: v.GetFloat64(prefix + ".horizontal"),
		Vertical:   v.GetFloat64(prefix + ".vertical"),
	}
}

// checkUnknownKeys recursively verifies that every key in doc appears in
// schema, returning an error naming the first offending path.
func checkUnknownKeys(path string, doc map[string]interface{}, schema map[string]interface{}) error {
	for key, val := range doc {
		fullPath := key
		if path != "" {
			fullPath = path + "." + key
		}
		allowed, ok := schema[key]
		if !ok {
			return fmt.Errorf("unrecognized configuration key %q", fullPath)
		}
		sub, isTree := allowed.(map[string]interface{})
		if !isTree {
			continue // terminal key: any value/shape accepted
		}
		nested, ok := val.(map[string]interface{})
		if !ok {
			return fmt.Errorf("configuration key %q must be an object", fullPath)
		}
		if err := checkUnknownKeys(fullPath, nested, sub); err != nil {
			return err
		}
	}
	return nil
}
