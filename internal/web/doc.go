// Package web serves the profile form to browsers.
//
// Every rendered page owns a form.Controller kept in a Registry under a
// random id. With the DataStar client loaded, field edits, phone list
// changes, submit and reset answer with server-sent element and signal
// patches; without it the same endpoints take plain form posts and
// answer with pages or redirects.
//
//	tr, _ := web.LoadTranslator(ctx, "en", log)
//	srv, _ := web.NewServer(web.DefaultConfig(), tr, web.WithLogger(log))
//	http.ListenAndServe(":8080", srv.Router())
package web
