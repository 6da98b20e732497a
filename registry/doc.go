// Package registry provides artifact metadata and coordinate translation for
// version alignment.
//
// Alignment needs two kinds of external data: the versions already published
// for an artifact (to pick the next build number and to reject forbidden
// versions), and the translation of declared coordinates into the versions a
// build should use instead.
//
// # Sources
//
// Every metadata provider implements [Source]:
//
//   - [Client] talks to a REST translation service over HTTP
//   - [FileRegistry] reads a local directory (file:// URLs), for airgap and
//     offline workflows
//   - [Static] serves pre-supplied metadata from memory
//   - [Chain] tries several sources in order
//
// All of them also expose Versions and Forbidden, so any of them can feed the
// version calculator and the forbidden-version policy.
//
// # Layout
//
// A file registry follows the repository layout, with one metadata file per
// artifact:
//
//	registry/
//	└── {group as path}/
//	    └── {artifact}/
//	        └── metadata.json
//
// metadata.json:
//
//	{
//	  "versions": ["1.0.0.redhat-1", "1.0.0.redhat-2"],
//	  "forbidden_versions": {"1.0.0.redhat-1": "CVE-2024-0001"}
//	}
//
// # Translation
//
// [Client.Translate] posts coordinate batches to {base}/lookup/gavs. Large
// batches are split into chunks that are sent concurrently; results come back
// in request order and are cached for the life of the client.
//
//	client := registry.NewClient("https://translate.example.com/api", registry.WithChunkSize(200))
//	translations, err := client.Translate(ctx, gavs)
package registry
