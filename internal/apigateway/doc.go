// Package apigateway performs schema-validated calls against the Cloudflare
// v4 API.
//
// Every call is described by a [CallSpec]: method, account-relative
// endpoint, bearer credential, filters, pagination and an optional result
// [Schema]. [Client.Call] builds the URL under /accounts/{account_id}, makes
// exactly one request, and classifies the outcome:
//
//   - [KindTransportFailure]: the request failed, timed out, or returned a
//     non-2xx status without a usable v4 body;
//   - [KindUpstream]: the API answered with a v4 error envelope;
//   - [KindResponseShapeMismatch]: a 2xx body that is not JSON or does not
//     match the envelope or result schema.
//
// There are no retries, no caching and no automatic paging. The client
// holds no per-call state, so calls for different tenants run concurrently
// without interfering.
package apigateway
