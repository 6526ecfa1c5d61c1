// Package entities contains main entities of service.
package entities

import (
	"time"
)

// User is an identity known to the service. Username is the opaque identifier.
type User struct {
	Username  string
	CreatedAt time.Time
}

// Group ...
type Group struct {
	ID          int64
	Slug        string
	Title       string
	Description string
}

// Post ...
type Post struct {
	ID        int64
	Author    string
	Text      string
	Group     *Group
	Image     string
	CreatedAt time.Time
}

// Comment ...
type Comment struct {
	ID        int64
	PostID    int64
	Author    string
	Text      string
	CreatedAt time.Time
}

// Follow is a directed edge: Follower's feed includes Followee's posts.
type Follow struct {
	Follower string
	Followee string
}
