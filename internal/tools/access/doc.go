// Package access provides the Cloudflare Access tools.
//
// The tools read applications and their policies, reusable policies,
// service tokens, identity providers, users and their sessions, Access
// logs, and the settings of the Zero Trust organization. Two tools run
// Access policy tests: access_policy_test_start submits a test and
// access_policy_test_get polls its status.
//
// # Security Model
//
// Every tool is tenant-scoped and runs against the caller's active account
// with the caller's own API token. Secret material in responses, such as
// service token client secrets and identity provider client secrets, is
// masked before it reaches the client.
//
// # Usage Examples
//
// List the policies of an application:
//
//	{
//	  "app_id": "f174e90a-fafe-4643-bbbc-4a0ed4fc8415"
//	}
//
// Start a policy test for two reusable policies:
//
//	{
//	  "policies": [
//	    "f174e90a-fafe-4643-bbbc-4a0ed4fc8415",
//	    "bf4dcfc0-1c3b-4b8d-9a5e-7a3fd6f7a28e"
//	  ]
//	}
package access
