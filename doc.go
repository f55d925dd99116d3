/*
Package portal is the backend of a small media portal on top of a Cloudinary
account.

It lets anyone browse the top level folders of the account and the files in
each folder, lets the browser upload straight to Cloudinary with a signature
issued by the server, and lets admins (an email allow-list) create and delete
folders and delete files.

HTTP surface:

	GET    /api/folders                 list folders
	GET    /api/folders/{folderName}    list files, newest first
	POST   /api/folders                 create a folder (admin)
	POST   /api/create-folder           same as above
	DELETE /api/folders/{folderName}    delete a folder and its files (admin)
	DELETE /api/files/{publicId...}     delete a file (admin)
	POST   /api/sign-upload             issue an upload signature
	GET    /api/check-admin             report the caller's admin status
	GET    /health, GET /metrics

Running:

	go run ./cmd/cloudinary-portal serve --config app.ini
	go run ./cmd/cloudinary-portal token --user user_1 --email ana@example.com

Packages:

	cloudinary  Admin and Upload API client, request signing
	gateway     folder and file operations, provider error mapping
	upload      upload signature issuer
	admin       admin allow-list policy
	auth        bearer token verification (HS256 and Clerk RS256)
	controller  HTTP handlers
	server      builder, DI container, middleware, rate limiting, ACME TLS
	config      INI + env configuration
	secrets     Azure Key Vault / GCP Secret Manager preloading
*/
package portal
