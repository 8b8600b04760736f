// Package demo holds the sample services the servicecore binary runs.
//
//	settings  plain, ready as soon as it is built
//	timer     hosted, ready on its first tick
//	patcher   plain, ready once an asynchronous version check finishes;
//	          the check starts when settings is ready
package demo
