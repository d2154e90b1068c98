package report

// Schema is the JSON Schema (Draft 2020-12) for the mirror JSON
// output. It documents the structure written by WriteListingJSON and
// WriteResolutionJSON.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://github.com/unbound-force/mirror/report.schema.json",
  "title": "Mirror Report",
  "description": "Output schema for mirror members and mirror resolve with --format=json",
  "type": "object",
  "required": ["version"],
  "properties": {
    "version": {
      "type": "string",
      "description": "Schema version (semver)"
    },
    "listing": { "$ref": "#/$defs/Listing" },
    "resolution": { "$ref": "#/$defs/Resolution" }
  },
  "oneOf": [
    { "required": ["listing"] },
    { "required": ["resolution"] }
  ],
  "$defs": {
    "Kind": {
      "type": "string",
      "enum": [
        "Field", "Property", "IndexedProperty", "Method",
        "Constructor", "Event", "NestedType"
      ]
    },
    "Member": {
      "type": "object",
      "required": ["name", "kind", "signature", "public", "static", "generic"],
      "properties": {
        "name": {
          "type": "string",
          "description": "Member name; constructors are listed as '<init>', indexers as '[]'"
        },
        "kind": { "$ref": "#/$defs/Kind" },
        "signature": {
          "type": "string",
          "description": "Rendered signature, e.g. 'Max[T](T, T) T'"
        },
        "public": { "type": "boolean" },
        "static": { "type": "boolean" },
        "generic": { "type": "boolean" },
        "location": {
          "type": "string",
          "description": "Source position (file:line:col)"
        },
        "complexity": {
          "type": "integer",
          "minimum": 1,
          "description": "Cyclomatic complexity of functions declared in the package"
        },
        "doc": {
          "type": "string",
          "description": "First sentence of the doc comment"
        }
      }
    },
    "Listing": {
      "type": "object",
      "required": ["type", "members"],
      "properties": {
        "type": { "type": "string" },
        "members": {
          "type": "array",
          "items": { "$ref": "#/$defs/Member" }
        }
      }
    },
    "Resolution": {
      "type": "object",
      "required": ["type", "member", "operation"],
      "properties": {
        "type": { "type": "string" },
        "member": { "type": "string" },
        "operation": {
          "type": "string",
          "enum": ["any", "value", "index", "invoke", "event", "nested"]
        },
        "resolved": { "$ref": "#/$defs/Member" },
        "instance": {
          "type": "string",
          "description": "Resolved signature with generic arguments substituted"
        },
        "type_args": {
          "type": "array",
          "items": { "type": "string" }
        },
        "error": { "$ref": "#/$defs/ResolutionError" }
      },
      "oneOf": [
        { "required": ["resolved"] },
        { "required": ["error"] }
      ]
    },
    "ResolutionError": {
      "type": "object",
      "required": ["kind", "message", "candidates"],
      "properties": {
        "kind": {
          "type": "string",
          "enum": ["MemberNotFound", "AmbiguousMember"]
        },
        "message": { "type": "string" },
        "candidates": {
          "type": "integer",
          "minimum": 0,
          "description": "Number of members with the queried name"
        },
        "matches": {
          "type": "array",
          "items": { "type": "string" },
          "description": "Signatures of the matching members when ambiguous"
        }
      }
    }
  }
}`
