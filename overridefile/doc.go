// Package overridefile reads alignment overrides declared in a Starlark
// file.
//
// The file is parsed with the buildtools parser, so it follows the same
// syntax as MODULE.bazel files, but is never executed. Four functions are
// recognised:
//
//	bom(
//	    coordinate = "org.acme:platform-bom:1.0",
//	    versions = {"io.netty:netty-all": "4.1.100.Final-redhat-1"},
//	)
//	managed_plugin(
//	    coordinate = "org.acme:platform-bom:1.0",
//	    plugin = "org.apache.maven.plugins:maven-compiler-plugin",
//	    version = "3.11.0.redhat-1",
//	    configuration = {"release": "17"},
//	    executions = [{"id": "default-compile", "phase": "compile", "goals": ["compile"]}],
//	)
//	dependency_override(dependency = "org.slf4j:*", module = "*", version = "")
//	plugin_override(plugin = "org.codehaus.mojo:exec-maven-plugin", module = "org.acme:web", version = "3.1.0")
//
// bom and managed_plugin declare the tables of a bill of materials; a [File]
// serves them as an override.Source. dependency_override and
// plugin_override declare module overrides, where an empty version excludes
// the coordinate.
package overridefile
