// Package environment names the deployment environment and derives the
// settings that depend on it.
//
// Three environments exist. Development covers local runs, Sandbox is the
// deployment wired to the Pi testnet sandbox, and Production is the live
// app. Parse accepts the aliases used by hosting platforms ("localhost",
// "dev", "staging", "prod", ...).
//
//	env := environment.Parse(os.Getenv("APP_ENV"))
//	sdkCfg := pisdk.InitConfig{Version: "2.0", Sandbox: env.PiSandbox()}
//
// Middleware attaches the environment to HTTP request contexts, where
// FromContext and IsProduction read it back.
package environment
