package di

// WellKnownNames holds the keys bootstrap registers its own collaborators
// under, so service constructors can resolve them.
type WellKnownNames struct {
	Config     string
	Logger     string
	Registry   string
	Components string
	Metrics    string
}

// Names are the keys of the values bootstrap places in every container.
var Names = WellKnownNames{
	Config:     "config",
	Logger:     "logger",
	Registry:   "service_registry",
	Components: "components",
	Metrics:    "registry_metrics",
}
