// Package config loads collab configuration with Viper.
//
// Configuration is read from a YAML, JSON or TOML file. The file is chosen with the
// --conf flag, or looked up as "config" in /etc/collab, $HOME/.collab and the working
// directory. Every key can be overridden by an environment variable prefixed with
// COLLAB_, using underscores for nesting:
//
//	export COLLAB_QUEUE_DRIVER=sqlite
//	export COLLAB_DELIVERY_MAX_RETRIES=8
//
// Example YAML:
//
//	app_name: collab
//	run_mode: release
//	logger:
//	  level: 4
//	  format: json
//	  output: stdout
//	data:
//	  driver: mongodb
//	  mongodb:
//	    database: studyhub
//	    master:
//	      uri: mongodb://localhost:27017
//	queue:
//	  driver: sqlite
//	  sqlite:
//	    path: ./offline.db
//	delivery:
//	  max_retries: 5
//	  backoff_base: 1s
//	  backoff_max: 30s
//
// Watch reloads the file on change and hands the new Config to a callback.
// Missing settings take their defaults. So do out-of-range ones, such as a
// non-positive batch size or a sample rate above 1.
package config
