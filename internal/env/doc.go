// Package env implements the layered configuration engine. An Env owns the
// registered settings, the resolved key/value mapping, and the scope stack
// used for nested save/restore overrides. Exactly one Env exists per run;
// it is created in main and passed explicitly into the binder and
// dispatcher rather than living as ambient global state.
package env
