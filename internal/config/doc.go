// Package config provides the route table document model, YAML loading
// and validation, and file watching for hot reload.
//
// A route table looks like:
//
//	apiVersion: verroute.io/v1
//	kind: RouteTable
//	metadata:
//	  name: demo
//	spec:
//	  listen:
//	    port: 8080
//	  versioning:
//	    comparator: lexical
//	  mappings:
//	    - name: orders-v2
//	      methods: [GET]
//	      paths: [/orders]
//	      versions:
//	        - value: "2.0"
//	      backend:
//	        proxy:
//	          url: http://orders-v2:9000
//
// Values may reference the environment with ${VAR} or ${VAR:-default}.
// A top-level includes list names further files, relative to the
// including file; they are merged before it. The watcher reloads when
// any of them changes.
//
// # Loading
//
//	cfg, err := config.LoadConfig("routes.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// ValidateConfig checks the document structure. Ambiguous mappings are
// reported when the declarations are registered.
//
// # Hot reload
//
//	w, err := config.NewWatcher(path, func(cfg *config.RouteTableConfig) error {
//	    return srv.Reload(cfg)
//	}, config.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	err = w.Start(ctx)
package config
