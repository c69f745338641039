// Package vcmp expands declarative component placeholders in HTML documents.
//
// A page names components with placeholder tags whose text is the component
// name:
//
//	<vc class="featured" $title="Q1 Report">card</vc>
//
// Each name resolves to a template resource (by default <name>.html in a
// components directory) holding one markup root plus optional <style> and
// <script> blocks:
//
//	<style>.card { padding: 1em }</style>
//	<div class><h2>$title</h2></div>
//	<script>function vc_card(c) {}</script>
//
// Expansion replaces the placeholder with the markup and yields
//
//	<div class="featured" data-vc="card"><h2>Q1 Report</h2></div>
//
// # Expansion Pass
//
// A pass drains a queue of placeholders, newest first, so nested components
// finish before siblings discovered earlier. The first placeholder of a name
// fetches its template; later ones reuse the cached template with a fresh
// splice and merge. Fetches run concurrently, bounded by WithMaxFetches, and
// a name is never fetched twice in one pass. Placeholders found inside an
// inserted template are queued as they appear.
//
// Once the queue is empty and no fetch is outstanding, the pass injects the
// aggregated styles as the first child of <head> and the aggregated scripts
// before the first top-level <script> of <body>, then runs constructor hooks.
//
// # Attributes
//
// Placeholder attributes are merged into the inserted markup under three
// rules:
//
//  1. Token attributes ($name) replace every literal occurrence of the token
//     in the inserted subtree with the (escaped) value. An unused token is
//     dropped.
//  2. A plain attribute goes to every element among the root and its direct
//     children that already declares it. class values are appended; anything
//     else is replaced.
//  3. Otherwise the plain attribute is set on the root.
//
// Template authors use rule 2 to pick which inner element receives caller
// attributes, by declaring the attribute bare (<input disabled>, <div class>).
//
// # Table Fragments
//
// A template whose markup is a bare <tr> (or <td>/<th>) cannot stand alone
// outside a table, so it materializes inside a <table> (or <tr>) and that
// wrapper is the instance.
//
// # Constructor Hooks
//
// Hooks are registered explicitly per component name:
//
//	reg := vcmp.NewRegistry()
//	reg.Hook("card", func(ctx context.Context, c *vcmp.Instance) error {
//	    c.SetAttr("data-ready", "true")
//	    return nil
//	})
//
// They run once per instance, in document order, after injection. A hook
// error aborts the remaining dispatch.
//
// # Failure
//
// Every error is fatal to the pass: an empty placeholder
// (ErrEmptyReference), a template that cannot be fetched
// (*TemplateFetchError), markup that does not yield exactly one root element
// (*SpliceIntegrityError), or a failing hook (*HookInvocationError). A
// cancelled context stops the pass with the context's error. Nothing
// is injected when expansion fails and nothing is retried. The document may
// be left partly expanded and should be discarded.
//
// # Sources
//
// Templates come from any Fetcher: NewFSFetcher for directories,
// NewHTTPFetcher for a remote base URL, or NewBundleFetcher for a signed or
// sealed bundle built ahead of time with BuildBundle and WriteBundle. Servers
// running many passes at once can wrap a fetcher with Dedup.
package vcmp
