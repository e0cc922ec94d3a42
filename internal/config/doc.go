// Package config handles loading and validation of deep-code configuration.
//
// Three kinds of input are read:
//
//   - The tool config at ~/.config/deep-code/config.toml (TOML). It names the
//     catalog repository, the GitHub API and the object store. Missing file
//     means defaults.
//   - The credentials file (.gitaccess, YAML) with github-username and
//     github-token.
//   - Dataset and workflow configs (YAML) describing what to publish.
//
// # Configuration Sources (highest priority first)
//
//   - DEEP_CODE_WORK_DIR env var: parent directory of per-publish clones
//   - DEEP_CODE_GITHUB_API env var: GitHub REST API base URL
//   - Config file settings
//   - Default values
//
// # Strict decoding
//
// Dataset and workflow configs are decoded key by key. Unknown keys are
// rejected with a suggestion of the closest known key, and every problem
// in a document is reported at once in an [*Error].
//
// # Path Validation
//
// work_dir must be absolute or start with ~ (no relative paths like "."
// or "..") to avoid confusion about the working directory.
package config
