package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           synthd API
// @version         1.0
// @description     HTTP API for loading generative models and running inference against them.
//
// @contact.name   synthd maintainers
// @contact.url    https://github.com/your-org/synthd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
