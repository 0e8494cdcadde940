// Package gestalt provides a layered, source-agnostic configuration
// library: heterogeneous sources (environment variables, in-memory maps,
// JSON documents) are parsed, merged in source-registration order,
// substitution-expanded, and decoded into caller-supplied Go types.
//
// # Core Components
//
// Core: orchestrates the pipeline — LoadConfigs asks every registered
// source for its contribution, merges fragments through the node manager,
// and GetConfig/GetConfigOptional navigate and decode the result.
//
// Builder: functional-options constructor. WithSource/WithLoader add
// collaborators; WithPolicy configures strict/relaxed decode behavior;
// WithMetrics wires Prometheus collectors; WithCache wraps the built Core
// in a decode-result cache.
//
// GestaltCache: a transparent decorator caching decoded (path, type, tags)
// results, invalidated on every reload.
//
// # Basic Usage
//
//	g, err := gestalt.Build(
//		gestalt.WithSource(source.NewEnvironmentSource("APP")),
//		gestalt.WithSource(source.NewMapSource("defaults", map[string]string{
//			"db.port": "5432",
//		})),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	if err := g.LoadConfigs(); err != nil {
//		log.Fatal(err)
//	}
//
//	port, err := gestalt.GetConfig[int](g, "db.port")
//	host := gestalt.GetConfigOptional(g, "db.host", "localhost")
//
// # Reload Notifications
//
//	// Patterns match the reloaded source's id, not a config path.
//	updates := g.Manager().OnChange("*")
//	for ev := range updates {
//		log.Printf("generation %d changed via %s", ev.GenerationID, ev.SourceID)
//	}
//
// # Substitution
//
// Leaf values containing `${...}` expressions are resolved against the
// `env`, `sys`, and `node` transforms by default — `${db.host}` reads
// another leaf in the same tree, `${env:HOME}` reads an environment
// variable. Build's own engine registers only these three; additional
// transforms (map, file, or caller-supplied) register through
// Substitution.RegisterTransform on an engine made with NewSubstitution.
package gestalt
