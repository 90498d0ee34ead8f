package emit

// Preset names accepted by graph.DebugConfig.Preset.
const (
	PresetDefault    = "default"
	PresetMinimal    = "minimal"
	PresetVerbose    = "verbose"
	PresetProduction = "production"
	PresetErrorsOnly = "errors_only"
)

// BuildPreset returns the Filter chain for a named preset, applied ahead
// of any caller-supplied customization (include/exclude/redact/truncate
// lists from a DebugConfig). An unrecognized name falls back to
// PresetDefault.
func BuildPreset(name string) []Filter {
	switch name {
	case PresetMinimal:
		return []Filter{
			IncludeTypes(MsgGraphStart, MsgGraphEnd, MsgNodeError),
		}
	case PresetVerbose:
		return nil
	case PresetProduction:
		return []Filter{
			ExcludeTypes(MsgNodeStart),
			TruncateStrings(2048),
			Sample(0.1),
		}
	case PresetErrorsOnly:
		return []Filter{
			IncludeTypes(MsgNodeError, MsgGraphEnd),
		}
	case PresetDefault:
		fallthrough
	default:
		return []Filter{
			TruncateStrings(8192),
		}
	}
}
