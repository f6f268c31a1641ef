package layer

// Standard priority levels for configuration layers.
// Higher values override lower values during merging.
const (
	// PriorityBuiltin is the lowest priority for built-in defaults.
	PriorityBuiltin = 0

	// PriorityUserGlobal is for user global settings (~/.config/codeseek/).
	PriorityUserGlobal = 100

	// PriorityProject is for project-local settings.
	PriorityProject = 200

	// PriorityFile is for a configuration file named explicitly, such as
	// a frontend's --config flag. It beats discovered files but not the
	// environment or host overrides.
	PriorityFile = 300

	// PriorityEnv is for environment variable overrides.
	PriorityEnv = 500

	// PriorityOverride is the highest priority, for host setup overrides.
	PriorityOverride = 1000
)

// DefaultPriority returns the default priority for a given source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceBuiltin:
		return PriorityBuiltin
	case SourceUserGlobal:
		return PriorityUserGlobal
	case SourceProject:
		return PriorityProject
	case SourceEnv:
		return PriorityEnv
	case SourceOverride:
		return PriorityOverride
	default:
		return PriorityBuiltin
	}
}
