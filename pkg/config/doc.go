// Package config loads env-tagged structs from the process environment.
//
// It combines github.com/joho/godotenv, which reads .env files, with
// github.com/caarlos0/env/v11, which maps variables onto struct fields.
// Parsed structs are cached per type.
//
//	var cfg apiclient.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Extra env files, e.g. one passed on the command line, are read with
// LoadEnvFiles before the first Load. Variables already present in the
// environment take precedence over file values.
package config
