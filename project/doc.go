// Package project models the reactor: the set of build projects aligned in
// one run.
//
// A [Project] carries its coordinate, an optional parent reference, its
// properties, dependency and plugin declarations (plain and managed), and
// profiles that repeat those sections. Projects are owned by a [Graph],
// which resolves parent references inside the reactor, walks inheritance
// chains and interpolates ${...} property references the way the build tool
// would.
//
// # Loading
//
// A reactor snapshot is a YAML document:
//
//	projects:
//	  - group: org.acme
//	    artifact: acme-parent
//	    version: 1.0.0
//	    properties:
//	      netty.version: 4.1.100.Final
//	    dependencyManagement:
//	      - group: io.netty
//	        artifact: netty-handler
//	        version: ${netty.version}
//	  - artifact: acme-core
//	    parent: {group: org.acme, artifact: acme-parent, version: 1.0.0}
//
// Use [LoadFile] or [Load] to read one and [Graph.Write] to emit the aligned
// result.
//
// # Change detection
//
// [Fingerprint] hashes the canonical encoding of a project so callers can
// tell which projects an alignment run touched.
package project
