// Package backup exports the tag graph as portable tag documents and
// restores it into another database.
//
// A document identifies a tag by its (title, category) key rather than its
// id, so a dump restores into a database whose ids differ:
//
//	tags:
//	  - title: applejack
//	    category: character
//	    aliases: [character:applejack]
//	    parent:
//	      title: pony
//	      category: content
//
// Import registers documents concurrently through tags.Register, which is
// safe under concurrency, then links parents in a second sequential pass
// once every key has an id.
package backup
